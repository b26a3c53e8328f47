// Package types - Resolution request and result types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places monetary outputs carry
const MoneyPlaces = 2

// RoundMoney rounds d to MoneyPlaces, half away from zero
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ResolveRequest is the transaction context the engine prices
type ResolveRequest struct {
	PartnerID   PartnerID       `json:"partner_id"`
	ServiceID   ServiceID       `json:"service_id"`
	CorridorID  CorridorID      `json:"corridor_id"`
	AffiliateID *AffiliateID    `json:"affiliate_id,omitempty"`
	Channel     Channel         `json:"channel"`
	Amount      decimal.Decimal `json:"amount"`

	// EvaluationTime selects the contract window; zero means now
	EvaluationTime time.Time `json:"evaluation_time,omitempty"`
}

// TaxLine is one itemized tax in a fee breakdown
type TaxLine struct {
	TaxID          TaxID           `json:"tax_id"`
	TaxCode        string          `json:"tax_code"`
	AppliedOn      AppliedOn       `json:"applied_on"`
	Rate           decimal.Decimal `json:"rate"`
	FixedAmount    decimal.Decimal `json:"fixed_amount"`
	ComputedAmount decimal.Decimal `json:"computed_amount"`
}

// Breakdown is the itemized fee produced by the fee composer. BaseFee, each
// ComputedAmount and Total are rounded to MoneyPlaces.
type Breakdown struct {
	BaseFee decimal.Decimal `json:"base_fee"`
	Taxes   []TaxLine       `json:"taxes"`
	Total   decimal.Decimal `json:"total"`
}

// ResolveResult is the full outcome of a resolution
type ResolveResult struct {
	Contract Contract        `json:"contract"`
	Pricing  Pricing         `json:"pricing"`
	Taxes    []TaxLine       `json:"taxes"`
	BaseFee  decimal.Decimal `json:"base_fee"`
	Total    decimal.Decimal `json:"total"`

	// EvaluatedAt is the instant the contract window was checked against
	EvaluatedAt time.Time `json:"evaluated_at"`
}
