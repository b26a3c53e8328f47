// Package api - Request and response types
// Ids travel as strings and money as JSON strings or numbers; conversion to
// domain types happens in toResolveRequest.
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"remit-pricing/core/output"
	"remit-pricing/core/types"
	"remit-pricing/core/validation"
	"remit-pricing/internal/errors"
)

// QuoteRequest is the body of POST /v1/quotes
type QuoteRequest struct {
	PartnerID   string  `json:"partner_id"`
	ServiceID   string  `json:"service_id"`
	CorridorID  string  `json:"corridor_id"`
	AffiliateID *string `json:"affiliate_id,omitempty"`
	Channel     string  `json:"channel"`

	// Amount accepts "100.50" or 100.50
	Amount decimal.Decimal `json:"amount"`

	// EvaluationTime defaults to the server clock
	EvaluationTime *time.Time `json:"evaluation_time,omitempty"`
}

// QuoteResponse is the body of a successful quote
type QuoteResponse struct {
	RequestID string        `json:"request_id"`
	Quote     *output.Quote `json:"quote"`
}

// ValidateResponse is the body of GET /v1/refdata/validate
type ValidateResponse struct {
	RequestID string `json:"request_id"`
	Valid     bool   `json:"valid"`
	Errors    int    `json:"errors"`
	Warnings  int    `json:"warnings"`

	Issues []validation.Issue `json:"issues"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	RequestID string      `json:"request_id"`
	Error     ErrorDetail `json:"error"`
}

// ErrorDetail describes an error
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (q *QuoteRequest) toResolveRequest() (types.ResolveRequest, error) {
	var (
		req = types.ResolveRequest{
			Channel: types.Channel(q.Channel),
			Amount:  q.Amount,
		}
		err error
	)

	if req.PartnerID, err = types.ParsePartnerID(q.PartnerID); err != nil {
		return req, badField("partner_id", err)
	}
	if req.ServiceID, err = types.ParseServiceID(q.ServiceID); err != nil {
		return req, badField("service_id", err)
	}
	if req.CorridorID, err = types.ParseCorridorID(q.CorridorID); err != nil {
		return req, badField("corridor_id", err)
	}
	if q.AffiliateID != nil && *q.AffiliateID != "" {
		a, err := types.ParseAffiliateID(*q.AffiliateID)
		if err != nil {
			return req, badField("affiliate_id", err)
		}
		req.AffiliateID = &a
	}
	if q.EvaluationTime != nil {
		req.EvaluationTime = *q.EvaluationTime
	}
	return req, nil
}

func badField(field string, err error) *errors.Error {
	return errors.Wrap(errors.TypeInput, "invalid "+field, err).WithContext("field", field)
}
