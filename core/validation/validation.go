// Package validation - Reference data validation
// Checks a full snapshot against the authoring invariants the engine relies
// on. A clean report means no request can hit an ambiguity error.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"remit-pricing/core/ports"
	"remit-pricing/core/types"
)

// Severity grades an issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Entity names the kind of row an issue is about
type Entity string

const (
	EntityContract Entity = "contract"
	EntityPricing  Entity = "pricing"
	EntityTax      Entity = "tax"
	EntityTaxRule  Entity = "tax_rule"
)

// Issue is one invariant violation
type Issue struct {
	Severity Severity `json:"severity"`
	Entity   Entity   `json:"entity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s %s: %s", i.Severity, i.Entity, i.Code, i.Message)
}

// Report is the sorted list of issues found in a snapshot
type Report struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether the snapshot has no errors. Warnings are allowed.
func (r *Report) OK() bool {
	return r.Count(SeverityError) == 0
}

// Count returns the number of issues with severity s
func (r *Report) Count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

func (r *Report) add(sev Severity, entity Entity, code, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		Entity:   entity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Rule checks one invariant over a snapshot
type Rule func(*ports.Snapshot, *Report)

// DefaultRules returns the standard rules
func DefaultRules() []Rule {
	return []Rule{
		checkContracts,
		checkContractOverlaps,
		checkPricings,
		checkPricingOverlaps,
		checkTaxes,
		checkTaxRules,
	}
}

// Validate runs rules over snap. Issues are sorted by entity, code, then message.
func Validate(snap *ports.Snapshot, rules ...Rule) *Report {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	report := &Report{}
	for _, rule := range rules {
		rule(snap, report)
	}
	sort.SliceStable(report.Issues, func(i, j int) bool {
		a, b := report.Issues[i], report.Issues[j]
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
	return report
}

func checkContracts(snap *ports.Snapshot, r *Report) {
	seen := make(map[string]bool)
	for _, c := range snap.Contracts {
		if seen[c.Code] {
			r.add(SeverityError, EntityContract, c.Code, "duplicate contract code")
		}
		seen[c.Code] = true

		if !c.StartDate.Before(c.EndDate) {
			r.add(SeverityError, EntityContract, c.Code, "start date %s is not before end date %s",
				c.StartDate.Format(time.RFC3339), c.EndDate.Format(time.RFC3339))
		}
	}
}

// checkContractOverlaps flags partners that could resolve to two contracts
func checkContractOverlaps(snap *ports.Snapshot, r *Report) {
	byPartner := make(map[types.PartnerID][]types.Contract)
	for _, c := range snap.Contracts {
		if c.Enabled {
			byPartner[c.PartnerID] = append(byPartner[c.PartnerID], c)
		}
	}
	for _, contracts := range byPartner {
		for i := 0; i < len(contracts); i++ {
			for j := i + 1; j < len(contracts); j++ {
				a, b := contracts[i], contracts[j]
				if a.Overlaps(&b) {
					first, second := ordered(a.Code, b.Code)
					r.add(SeverityError, EntityContract, first,
						"validity window overlaps contract %s for partner %s", second, a.PartnerID)
				}
			}
		}
	}
}

func checkPricings(snap *ports.Snapshot, r *Report) {
	seen := make(map[string]bool)
	for _, p := range snap.Pricings {
		if seen[p.Code] {
			r.add(SeverityError, EntityPricing, p.Code, "duplicate pricing code")
		}
		seen[p.Code] = true

		if p.Channel == "" {
			r.add(SeverityError, EntityPricing, p.Code, "channel is empty")
		}
		if !p.MinimumAmount.IsPositive() {
			r.add(SeverityError, EntityPricing, p.Code, "minimum amount %s must be positive", p.MinimumAmount)
		}
		if !p.MinimumAmount.LessThan(p.MaximumAmount) {
			r.add(SeverityError, EntityPricing, p.Code, "minimum amount %s is not below maximum amount %s",
				p.MinimumAmount, p.MaximumAmount)
		}
		if p.FixedAmount == nil && p.Rate == nil {
			r.add(SeverityError, EntityPricing, p.Code, "neither fixed amount nor rate is set")
		}
		if p.FixedAmount != nil && p.FixedAmount.IsNegative() {
			r.add(SeverityError, EntityPricing, p.Code, "fixed amount %s is negative", *p.FixedAmount)
		}
		if p.Rate != nil && p.Rate.IsNegative() {
			r.add(SeverityError, EntityPricing, p.Code, "rate %s is negative", *p.Rate)
		}
	}
}

// checkPricingOverlaps flags enabled rules that would produce AmbiguousPricing
func checkPricingOverlaps(snap *ports.Snapshot, r *Report) {
	var enabled []types.Pricing
	for _, p := range snap.Pricings {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	for i := 0; i < len(enabled); i++ {
		for j := i + 1; j < len(enabled); j++ {
			a, b := enabled[i], enabled[j]
			if a.SameScope(&b) && a.Overlaps(&b) {
				first, second := ordered(a.Code, b.Code)
				r.add(SeverityError, EntityPricing, first,
					"bracket overlaps pricing %s with the same scope", second)
			}
		}
	}
}

var one = decimal.NewFromInt(1)

func checkTaxes(snap *ports.Snapshot, r *Report) {
	seen := make(map[string]bool)
	for _, t := range snap.Taxes {
		if seen[t.Code] {
			r.add(SeverityError, EntityTax, t.Code, "duplicate tax code")
		}
		seen[t.Code] = true

		if !t.AppliedOn.IsValid() {
			r.add(SeverityError, EntityTax, t.Code, "invalid applied_on %s", t.AppliedOn)
		}
		if t.Rate.IsNegative() || !t.Rate.LessThan(one) {
			r.add(SeverityError, EntityTax, t.Code, "rate %s is outside [0, 1)", t.Rate)
		}
		if t.FixedAmount.IsNegative() {
			r.add(SeverityError, EntityTax, t.Code, "fixed amount %s is negative", t.FixedAmount)
		}
		if t.Rate.IsZero() && t.FixedAmount.IsZero() {
			r.add(SeverityWarning, EntityTax, t.Code, "tax always computes to zero")
		}
	}
}

type taxRuleKey struct {
	tax      types.TaxID
	corridor types.CorridorID
	service  types.ServiceID
}

func checkTaxRules(snap *ports.Snapshot, r *Report) {
	taxes := make(map[types.TaxID]types.Tax, len(snap.Taxes))
	for _, t := range snap.Taxes {
		taxes[t.ID] = t
	}

	seen := make(map[taxRuleKey]types.TaxRuleDetailID)
	for _, d := range snap.TaxRuleDetails {
		if !d.Enabled {
			continue
		}
		code := d.ID.String()

		t, ok := taxes[d.TaxID]
		switch {
		case !ok:
			r.add(SeverityError, EntityTaxRule, code, "references missing tax %s", d.TaxID)
		case !t.Enabled:
			r.add(SeverityError, EntityTaxRule, code, "references disabled tax %s", t.Code)
		}

		k := taxRuleKey{d.TaxID, d.CorridorID, d.ServiceID}
		if prev, dup := seen[k]; dup {
			first, second := ordered(prev.String(), code)
			r.add(SeverityError, EntityTaxRule, first,
				"duplicates enabled rule %s for the same tax, corridor and service", second)
			continue
		}
		seen[k] = d.ID
	}
}

func ordered(a, b string) (string, string) {
	if strings.Compare(a, b) > 0 {
		return b, a
	}
	return a, b
}
