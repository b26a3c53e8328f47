// Package validation - Reference data invariant tests
package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"remit-pricing/core/ports"
	"remit-pricing/core/types"
)

var (
	partner  = types.PartnerID{UUID: uuid.MustParse("11111111-1111-1111-1111-111111111111")}
	service  = types.ServiceID{UUID: uuid.MustParse("22222222-2222-2222-2222-222222222222")}
	corridor = types.CorridorID{UUID: uuid.MustParse("33333333-3333-3333-3333-333333333333")}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func contract(code string, startYear, endYear int) types.Contract {
	return types.Contract{
		ID:        types.ContractID{UUID: uuid.New()},
		PartnerID: partner,
		Code:      code,
		StartDate: time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(endYear, 1, 1, 0, 0, 0, 0, time.UTC),
		Enabled:   true,
	}
}

func pricing(code, min, max string) types.Pricing {
	return types.Pricing{
		ID:            types.PricingID{UUID: uuid.New()},
		Code:          code,
		Channel:       types.ChannelOnline,
		MinimumAmount: dec(min),
		MaximumAmount: dec(max),
		FixedAmount:   types.DecimalPtr(dec("5")),
		ServiceID:     service,
		CorridorID:    corridor,
		Enabled:       true,
	}
}

func tax(code, rate string) types.Tax {
	return types.Tax{
		ID:          types.TaxID{UUID: uuid.New()},
		Code:        code,
		Rate:        dec(rate),
		FixedAmount: decimal.Zero,
		AppliedOn:   types.OnFee,
		Enabled:     true,
	}
}

func taxRule(t types.Tax) types.TaxRuleDetail {
	return types.TaxRuleDetail{
		ID:         types.TaxRuleDetailID{UUID: uuid.New()},
		TaxID:      t.ID,
		CorridorID: corridor,
		ServiceID:  service,
		Enabled:    true,
	}
}

func cleanSnapshot() *ports.Snapshot {
	vat := tax("VAT", "0.05")
	return &ports.Snapshot{
		Contracts:      []types.Contract{contract("C-2024", 2024, 2025), contract("C-2025", 2025, 2026)},
		Pricings:       []types.Pricing{pricing("P-LOW", "1", "100"), pricing("P-HIGH", "100.01", "1000")},
		Taxes:          []types.Tax{vat},
		TaxRuleDetails: []types.TaxRuleDetail{taxRule(vat)},
	}
}

// hasIssue reports whether the report holds an issue for code whose message
// contains fragment
func hasIssue(r *Report, sev Severity, entity Entity, code, fragment string) bool {
	for _, i := range r.Issues {
		if i.Severity == sev && i.Entity == entity && i.Code == code && strings.Contains(i.Message, fragment) {
			return true
		}
	}
	return false
}

// TestValidateClean proves well-formed data yields an empty report
func TestValidateClean(t *testing.T) {
	report := Validate(cleanSnapshot())
	if !report.OK() {
		t.Fatalf("Expected clean report, got %v", report.Issues)
	}
	if len(report.Issues) != 0 {
		t.Errorf("Expected no issues, got %v", report.Issues)
	}
}

// TestValidateContracts covers contract windows and overlaps
func TestValidateContracts(t *testing.T) {
	snap := cleanSnapshot()
	snap.Contracts = append(snap.Contracts,
		contract("C-BAD", 2030, 2029),
		contract("C-OVERLAP", 2025, 2027),
	)
	disabled := contract("C-OFF", 2025, 2026)
	disabled.Enabled = false
	snap.Contracts = append(snap.Contracts, disabled)

	report := Validate(snap)

	if !hasIssue(report, SeverityError, EntityContract, "C-BAD", "not before end date") {
		t.Errorf("Expected window error for C-BAD, got %v", report.Issues)
	}
	if !hasIssue(report, SeverityError, EntityContract, "C-2025", "overlaps contract C-OVERLAP") {
		t.Errorf("Expected overlap error for C-2025, got %v", report.Issues)
	}
	for _, i := range report.Issues {
		if i.Code == "C-OFF" || strings.Contains(i.Message, "C-OFF") {
			t.Errorf("Expected disabled contract ignored, got %s", i)
		}
	}
	// Adjacent windows share no instant.
	if hasIssue(report, SeverityError, EntityContract, "C-2024", "overlaps contract C-2025") {
		t.Errorf("Expected adjacent contracts allowed, got %v", report.Issues)
	}
}

// TestValidatePricings covers the per-row pricing checks
func TestValidatePricings(t *testing.T) {
	noFormula := pricing("P-EMPTY", "1", "2")
	noFormula.FixedAmount = nil
	noFormula.ServiceID = types.ServiceID{UUID: uuid.New()}

	inverted := pricing("P-INVERTED", "100", "10")
	inverted.ServiceID = types.ServiceID{UUID: uuid.New()}

	zeroMin := pricing("P-ZERO", "0", "10")
	zeroMin.ServiceID = types.ServiceID{UUID: uuid.New()}

	negative := pricing("P-NEG", "1", "10")
	negative.Rate = types.DecimalPtr(dec("-0.01"))
	negative.ServiceID = types.ServiceID{UUID: uuid.New()}

	snap := cleanSnapshot()
	snap.Pricings = append(snap.Pricings, noFormula, inverted, zeroMin, negative)

	report := Validate(snap)

	checks := []struct {
		code     string
		fragment string
	}{
		{"P-EMPTY", "neither fixed amount nor rate"},
		{"P-INVERTED", "is not below maximum"},
		{"P-ZERO", "must be positive"},
		{"P-NEG", "rate -0.01 is negative"},
	}
	for _, c := range checks {
		if !hasIssue(report, SeverityError, EntityPricing, c.code, c.fragment) {
			t.Errorf("Expected %q for %s, got %v", c.fragment, c.code, report.Issues)
		}
	}
}

// TestValidatePricingOverlaps proves same-scope overlaps are errors and
// differently scoped overlaps are not
func TestValidatePricingOverlaps(t *testing.T) {
	snap := cleanSnapshot()

	overlap := pricing("P-MID", "50", "150")

	otherChannel := pricing("P-BRANCH", "1", "1000")
	otherChannel.Channel = types.ChannelBranch

	aff := types.AffiliateID{UUID: uuid.New()}
	affiliateRule := pricing("P-AFF", "1", "1000")
	affiliateRule.AffiliateID = &aff

	disabled := pricing("P-OFF", "1", "1000")
	disabled.Enabled = false

	snap.Pricings = append(snap.Pricings, overlap, otherChannel, affiliateRule, disabled)
	report := Validate(snap)

	if !hasIssue(report, SeverityError, EntityPricing, "P-HIGH", "overlaps pricing P-MID") {
		t.Errorf("Expected P-HIGH/P-MID overlap, got %v", report.Issues)
	}
	if !hasIssue(report, SeverityError, EntityPricing, "P-LOW", "overlaps pricing P-MID") {
		t.Errorf("Expected P-LOW/P-MID overlap, got %v", report.Issues)
	}
	for _, code := range []string{"P-BRANCH", "P-AFF", "P-OFF"} {
		for _, i := range report.Issues {
			if strings.Contains(i.Message, code) || i.Code == code {
				t.Errorf("Expected no issue for %s, got %s", code, i)
			}
		}
	}
	if report.Count(SeverityError) != 2 {
		t.Errorf("Expected 2 errors, got %d: %v", report.Count(SeverityError), report.Issues)
	}
}

// TestValidateTaxes covers tax definition checks
func TestValidateTaxes(t *testing.T) {
	snap := cleanSnapshot()

	zero := tax("ZERO", "0")
	whole := tax("WHOLE", "1")
	badBase := tax("BAD", "0.1")
	badBase.AppliedOn = types.AppliedOn(9)
	snap.Taxes = append(snap.Taxes, zero, whole, badBase)

	report := Validate(snap)

	if !hasIssue(report, SeverityWarning, EntityTax, "ZERO", "always computes to zero") {
		t.Errorf("Expected zero-tax warning, got %v", report.Issues)
	}
	if !hasIssue(report, SeverityError, EntityTax, "WHOLE", "outside [0, 1)") {
		t.Errorf("Expected rate error, got %v", report.Issues)
	}
	if !hasIssue(report, SeverityError, EntityTax, "BAD", "invalid applied_on") {
		t.Errorf("Expected applied_on error, got %v", report.Issues)
	}
	if report.Count(SeverityWarning) != 1 {
		t.Errorf("Expected 1 warning, got %d", report.Count(SeverityWarning))
	}
}

// TestValidateTaxRules covers dangling references and duplicates
func TestValidateTaxRules(t *testing.T) {
	snap := cleanSnapshot()
	vat := snap.Taxes[0]

	off := tax("OFF", "0.1")
	off.Enabled = false
	snap.Taxes = append(snap.Taxes, off)

	dangling := taxRule(tax("GHOST", "0.1"))
	disabledRef := taxRule(off)
	duplicate := taxRule(vat)

	ignored := taxRule(vat)
	ignored.Enabled = false

	snap.TaxRuleDetails = append(snap.TaxRuleDetails, dangling, disabledRef, duplicate, ignored)
	report := Validate(snap)

	if !hasIssue(report, SeverityError, EntityTaxRule, dangling.ID.String(), "references missing tax") {
		t.Errorf("Expected missing tax error, got %v", report.Issues)
	}
	if !hasIssue(report, SeverityError, EntityTaxRule, disabledRef.ID.String(), "references disabled tax OFF") {
		t.Errorf("Expected disabled tax error, got %v", report.Issues)
	}

	first, second := ordered(snap.TaxRuleDetails[0].ID.String(), duplicate.ID.String())
	if !hasIssue(report, SeverityError, EntityTaxRule, first, "duplicates enabled rule "+second) {
		t.Errorf("Expected duplicate error, got %v", report.Issues)
	}
	if report.Count(SeverityError) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", report.Count(SeverityError), report.Issues)
	}
}

// TestValidateSorted proves the report order is stable
func TestValidateSorted(t *testing.T) {
	snap := cleanSnapshot()
	snap.Taxes = append(snap.Taxes, tax("Z-ZERO", "0"), tax("A-ZERO", "0"))
	snap.Contracts = append(snap.Contracts, contract("C-BAD", 2030, 2029))

	report := Validate(snap)
	if len(report.Issues) != 3 {
		t.Fatalf("Expected 3 issues, got %v", report.Issues)
	}
	want := []string{"contract C-BAD", "tax A-ZERO", "tax Z-ZERO"}
	for i, w := range want {
		got := string(report.Issues[i].Entity) + " " + report.Issues[i].Code
		if got != w {
			t.Errorf("Position %d: expected %s, got %s", i, w, got)
		}
	}
}

// TestValidateCustomRules proves callers can run a subset of rules
func TestValidateCustomRules(t *testing.T) {
	snap := cleanSnapshot()
	snap.Contracts = append(snap.Contracts, contract("C-BAD", 2030, 2029))

	report := Validate(snap, checkPricings)
	if len(report.Issues) != 0 {
		t.Errorf("Expected pricing rule only, got %v", report.Issues)
	}
}
