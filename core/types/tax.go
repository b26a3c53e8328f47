// Package types - Tax types
package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AppliedOn selects the monetary base a tax is computed against. It is a
// closed set: every switch over it must handle each value.
type AppliedOn int

const (
	// OnPrincipal computes the tax against the transfer amount
	OnPrincipal AppliedOn = iota + 1

	// OnFee computes the tax against the base fee
	OnFee
)

// String returns the canonical name
func (a AppliedOn) String() string {
	switch a {
	case OnPrincipal:
		return "OnPrincipal"
	case OnFee:
		return "OnFee"
	default:
		return fmt.Sprintf("AppliedOn(%d)", int(a))
	}
}

// IsValid reports whether a is a known value
func (a AppliedOn) IsValid() bool {
	switch a {
	case OnPrincipal, OnFee:
		return true
	default:
		return false
	}
}

// ParseAppliedOn converts a stored tag into AppliedOn. Only storage and
// transport adapters call this.
func ParseAppliedOn(s string) (AppliedOn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "onprincipal", "on_principal", "principal", "amount":
		return OnPrincipal, nil
	case "onfee", "on_fee", "fee":
		return OnFee, nil
	default:
		return 0, fmt.Errorf("unknown applied_on value %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (a AppliedOn) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("cannot marshal %s", a)
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *AppliedOn) UnmarshalText(text []byte) error {
	v, err := ParseAppliedOn(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Tax is a tax definition
type Tax struct {
	ID   TaxID  `json:"id"`
	Code string `json:"code"`

	// Rate is a fraction, 0.05 = 5%
	Rate decimal.Decimal `json:"rate"`

	FixedAmount decimal.Decimal `json:"fixed_amount"`
	AppliedOn   AppliedOn       `json:"applied_on"`
	Enabled     bool            `json:"enabled"`
}

// TaxRuleDetail says a tax applies to transactions on a (corridor, service) pair
type TaxRuleDetail struct {
	ID         TaxRuleDetailID `json:"id"`
	TaxID      TaxID           `json:"tax_id"`
	CorridorID CorridorID      `json:"corridor_id"`
	ServiceID  ServiceID       `json:"service_id"`
	Enabled    bool            `json:"enabled"`
}

// AppliedTax pairs a tax rule detail with its resolved tax definition
type AppliedTax struct {
	Rule TaxRuleDetail `json:"rule"`
	Tax  Tax           `json:"tax"`
}
