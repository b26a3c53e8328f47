// Package fee composes a pricing formula and its taxes into a fee breakdown.
//
// All arithmetic runs at full decimal precision. Each output line is rounded
// once, half away from zero, and the total is the sum of the rounded lines,
// so the printed lines always add up to the printed total.
package fee

import (
	"fmt"

	"github.com/shopspring/decimal"

	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
)

// BaseFee returns (Fixed ?? 0) + (Rate ?? 0) * amount, unrounded. The
// pricing bracket gates eligibility only and is not applied as a clamp.
func BaseFee(p *types.Pricing, amount decimal.Decimal) decimal.Decimal {
	fee := decimal.Zero
	if p.FixedAmount != nil {
		fee = fee.Add(*p.FixedAmount)
	}
	if p.Rate != nil {
		fee = fee.Add(p.Rate.Mul(amount))
	}
	return fee
}

// TaxAmount returns Fixed + Rate * base(AppliedOn), unrounded. Taxes are
// computed against the principal or the base fee, never another tax.
func TaxAmount(t *types.Tax, amount, baseFee decimal.Decimal) (decimal.Decimal, error) {
	var base decimal.Decimal
	switch t.AppliedOn {
	case types.OnPrincipal:
		base = amount
	case types.OnFee:
		base = baseFee
	default:
		return decimal.Zero, errors.Internal(fmt.Sprintf("tax %s has invalid applied_on %s", t.Code, t.AppliedOn), nil).
			WithContext("tax_id", t.ID.String())
	}
	return t.FixedAmount.Add(t.Rate.Mul(base)), nil
}

// Compose builds the itemized breakdown. Taxes are emitted in the order given.
func Compose(p *types.Pricing, taxes []types.AppliedTax, amount decimal.Decimal) (*types.Breakdown, error) {
	if p == nil {
		return nil, errors.Internal("compose called without pricing", nil)
	}
	if !amount.IsPositive() {
		return nil, errors.InvalidAmount(amount.String())
	}

	base := BaseFee(p, amount)
	baseRounded := types.RoundMoney(base)

	out := &types.Breakdown{
		BaseFee: baseRounded,
		Taxes:   make([]types.TaxLine, 0, len(taxes)),
	}
	total := baseRounded

	for i := range taxes {
		t := &taxes[i].Tax
		raw, err := TaxAmount(t, amount, base)
		if err != nil {
			return nil, err
		}
		computed := types.RoundMoney(raw)

		out.Taxes = append(out.Taxes, types.TaxLine{
			TaxID:          t.ID,
			TaxCode:        t.Code,
			AppliedOn:      t.AppliedOn,
			Rate:           t.Rate,
			FixedAmount:    t.FixedAmount,
			ComputedAmount: computed,
		})
		total = total.Add(computed)
	}

	out.Total = total
	return out, nil
}
