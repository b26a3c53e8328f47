// Package types - Pricing types
package types

import (
	"github.com/shopspring/decimal"
)

// Pricing is a fee rule for a (service, corridor) pair, scoped by channel,
// optional affiliate and an amount bracket.
type Pricing struct {
	// ID uniquely identifies this rule
	ID PricingID `json:"id"`

	// Code is the unique business code
	Code string `json:"code"`

	// Channel must equal the request channel
	Channel Channel `json:"channel"`

	// MinimumAmount is the inclusive lower bound of the bracket
	MinimumAmount decimal.Decimal `json:"minimum_amount"`

	// MaximumAmount is the inclusive upper bound of the bracket
	MaximumAmount decimal.Decimal `json:"maximum_amount"`

	// FixedAmount is the flat part of the fee (nil = none)
	FixedAmount *decimal.Decimal `json:"fixed_amount,omitempty"`

	// Rate is the proportional part of the fee as a fraction (nil = none)
	Rate *decimal.Decimal `json:"rate,omitempty"`

	ServiceID  ServiceID  `json:"service_id"`
	CorridorID CorridorID `json:"corridor_id"`

	// AffiliateID scopes the rule to one affiliate (nil = any affiliate)
	AffiliateID *AffiliateID `json:"affiliate_id,omitempty"`

	Enabled bool `json:"enabled"`
}

// InBracket reports whether amount lies in [MinimumAmount, MaximumAmount]
func (p *Pricing) InBracket(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.MinimumAmount) && amount.LessThanOrEqual(p.MaximumAmount)
}

// IsWildcard reports whether the rule applies to any affiliate
func (p *Pricing) IsWildcard() bool {
	return p.AffiliateID == nil
}

// Overlaps reports whether the brackets of p and o intersect (both inclusive)
func (p *Pricing) Overlaps(o *Pricing) bool {
	return p.MinimumAmount.LessThanOrEqual(o.MaximumAmount) && o.MinimumAmount.LessThanOrEqual(p.MaximumAmount)
}

// SameScope reports whether p and o compete for the same transactions apart
// from the bracket.
func (p *Pricing) SameScope(o *Pricing) bool {
	if p.ServiceID != o.ServiceID || p.CorridorID != o.CorridorID || p.Channel != o.Channel {
		return false
	}
	if p.AffiliateID == nil || o.AffiliateID == nil {
		return p.AffiliateID == nil && o.AffiliateID == nil
	}
	return *p.AffiliateID == *o.AffiliateID
}

// DecimalPtr returns a pointer to d. Used to fill optional rule fields.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
