// Package pricing selects the single pricing rule that governs a transaction.
package pricing

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"remit-pricing/core/ports"
	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
	"remit-pricing/internal/logging"
)

// Specificity ranks how closely a rule's affiliate scope fits a request
type Specificity int

const (
	// Ineligible rules are scoped to a different affiliate
	Ineligible Specificity = iota

	// Wildcard rules apply to any affiliate
	Wildcard

	// AffiliateExact rules name the request's affiliate
	AffiliateExact
)

// MatchRequest carries the dimensions a pricing rule is matched on
type MatchRequest struct {
	ServiceID   types.ServiceID
	CorridorID  types.CorridorID
	AffiliateID *types.AffiliateID
	Channel     types.Channel
	Amount      decimal.Decimal
}

// fields returns the diagnostic context attached to matcher errors
func (r MatchRequest) fields() map[string]interface{} {
	f := map[string]interface{}{
		"service_id":  r.ServiceID.String(),
		"corridor_id": r.CorridorID.String(),
		"channel":     r.Channel.String(),
		"amount":      r.Amount.String(),
	}
	if r.AffiliateID != nil {
		f["affiliate_id"] = r.AffiliateID.String()
	}
	return f
}

// Matcher picks the most specific enabled pricing for a request
type Matcher struct {
	pricings ports.PricingReader
	logger   *zap.Logger
}

// NewMatcher creates a matcher reading from pricings
func NewMatcher(pricings ports.PricingReader) *Matcher {
	return &Matcher{
		pricings: pricings,
		logger:   logging.Named("pricing"),
	}
}

// Match fetches candidates and selects one of them
func (m *Matcher) Match(ctx context.Context, req MatchRequest) (*types.Pricing, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.InvalidAmount(req.Amount.String()).WithFields(req.fields())
	}

	if err := errors.CheckContext(ctx, "pricing lookup"); err != nil {
		return nil, err
	}

	candidates, err := m.pricings.GetEnabledPricings(ctx, req.ServiceID, req.CorridorID)
	if err != nil {
		return nil, errors.FromRead("pricing lookup", err).WithFields(req.fields())
	}

	selected, err := Select(candidates, req)
	if err != nil {
		if errors.IsType(err, errors.TypeAmbiguousPricing) {
			m.logger.Warn("ambiguous pricing rules", zap.Any("context", req.fields()), zap.Error(err))
		}
		return nil, err
	}

	m.logger.Debug("pricing matched",
		zap.String("pricing", selected.Code),
		zap.String("amount", req.Amount.String()),
	)
	return selected, nil
}

// Rank returns the specificity of p for the given request affiliate
func Rank(p *types.Pricing, affiliate *types.AffiliateID) Specificity {
	if p.AffiliateID == nil {
		return Wildcard
	}
	if affiliate != nil && *p.AffiliateID == *affiliate {
		return AffiliateExact
	}
	return Ineligible
}

// Select applies the matching rules to an already fetched candidate set.
// It is pure and independent of candidate order.
func Select(candidates []types.Pricing, req MatchRequest) (*types.Pricing, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.InvalidAmount(req.Amount.String()).WithFields(req.fields())
	}

	best := Ineligible
	var top []types.Pricing

	for i := range candidates {
		p := &candidates[i]

		// Service and corridor are never wildcarded.
		if !p.Enabled || p.ServiceID != req.ServiceID || p.CorridorID != req.CorridorID {
			continue
		}
		if p.Channel != req.Channel {
			continue
		}
		if !p.InBracket(req.Amount) {
			continue
		}

		rank := Rank(p, req.AffiliateID)
		switch {
		case rank == Ineligible:
			continue
		case rank > best:
			best = rank
			top = append(top[:0], *p)
		case rank == best:
			top = append(top, *p)
		}
	}

	switch len(top) {
	case 0:
		return nil, errors.New(errors.TypeNoMatchingPricing, "no pricing rule matches the transaction").
			WithFields(req.fields()).
			WithContext("candidates", len(candidates))
	case 1:
		selected := top[0]
		return &selected, nil
	default:
		codes := make([]string, 0, len(top))
		for _, p := range top {
			codes = append(codes, p.Code)
		}
		sort.Strings(codes)
		return nil, errors.Newf(errors.TypeAmbiguousPricing, "%d pricing rules match with equal specificity", len(top)).
			WithFields(req.fields()).
			WithContext("pricings", codes)
	}
}
