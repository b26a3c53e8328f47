// Package storage - Seed file tests
package storage

import (
	"path/filepath"
	"testing"

	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
)

// TestLoadSeedHCL covers the block format
func TestLoadSeedHCL(t *testing.T) {
	snap, err := LoadSeedFile(filepath.Join("testdata", "refdata.hcl"))
	if err != nil {
		t.Fatalf("Expected seed to load, got error: %v", err)
	}

	if len(snap.Contracts) != 2 {
		t.Fatalf("Expected 2 contracts, got %d", len(snap.Contracts))
	}
	if len(snap.Pricings) != 4 {
		t.Fatalf("Expected 4 pricings, got %d", len(snap.Pricings))
	}
	if len(snap.Taxes) != 1 || len(snap.TaxRuleDetails) != 1 {
		t.Fatalf("Expected 1 tax and 1 rule, got %d and %d", len(snap.Taxes), len(snap.TaxRuleDetails))
	}

	c := snap.Contracts[0]
	if c.Code != "C-2025" || !c.Enabled {
		t.Errorf("Expected enabled C-2025, got %s enabled=%v", c.Code, c.Enabled)
	}
	if c.StartDate.Format("2006-01-02") != "2025-01-01" {
		t.Errorf("Expected start 2025-01-01, got %s", c.StartDate)
	}
	if snap.Contracts[1].Enabled {
		t.Error("Expected C-2024 disabled")
	}

	branch := snap.Pricings[1]
	if branch.Channel != types.ChannelBranch {
		t.Errorf("Expected Branch, got %s", branch.Channel)
	}
	if branch.Rate == nil || branch.Rate.String() != "0.01" {
		t.Errorf("Expected rate 0.01, got %v", branch.Rate)
	}
	if branch.AffiliateID != nil {
		t.Errorf("Expected wildcard, got %s", branch.AffiliateID)
	}

	aff := snap.Pricings[2]
	if aff.AffiliateID == nil || aff.AffiliateID.String() != "44444444-4444-4444-4444-444444444444" {
		t.Errorf("Expected affiliate scope, got %v", aff.AffiliateID)
	}
	if aff.Rate != nil {
		t.Errorf("Expected no rate, got %s", aff.Rate)
	}

	vat := snap.Taxes[0]
	if vat.AppliedOn != types.OnFee || vat.Rate.String() != "0.05" || !vat.FixedAmount.IsZero() {
		t.Errorf("Expected VAT 5%% on fee, got %+v", vat)
	}
}

// TestLoadSeedYAML covers the yaml format and explicit enabled flags
func TestLoadSeedYAML(t *testing.T) {
	snap, err := LoadSeedFile(filepath.Join("testdata", "refdata.yaml"))
	if err != nil {
		t.Fatalf("Expected seed to load, got error: %v", err)
	}

	if len(snap.Taxes) != 1 {
		t.Fatalf("Expected 1 tax, got %d", len(snap.Taxes))
	}
	stamp := snap.Taxes[0]
	if stamp.AppliedOn != types.OnPrincipal || stamp.FixedAmount.String() != "0.5" {
		t.Errorf("Expected STAMP on principal with 0.50 fixed, got %+v", stamp)
	}
	if len(snap.TaxRuleDetails) != 1 || snap.TaxRuleDetails[0].Enabled {
		t.Errorf("Expected one disabled tax rule, got %+v", snap.TaxRuleDetails)
	}
}

// TestLoadSeedJSON covers the json format
func TestLoadSeedJSON(t *testing.T) {
	snap, err := LoadSeedFile(filepath.Join("testdata", "refdata.json"))
	if err != nil {
		t.Fatalf("Expected seed to load, got error: %v", err)
	}
	if len(snap.Pricings) != 1 {
		t.Fatalf("Expected 1 pricing, got %d", len(snap.Pricings))
	}
	p := snap.Pricings[0]
	if p.FixedAmount != nil || p.Rate == nil || p.Rate.String() != "0.02" {
		t.Errorf("Expected rate-only pricing, got fixed=%v rate=%v", p.FixedAmount, p.Rate)
	}
}

// TestParseSeedErrors proves bad input is a config error
func TestParseSeedErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
	}{
		{"unknown extension", "refdata.toml", ""},
		{"broken json", "refdata.json", "{"},
		{"broken hcl", "refdata.hcl", "contract {"},
		{"bad uuid", "refdata.json", `{"contracts":[{"code":"C","id":"nope","partner_id":"x","start_date":"2025-01-01","end_date":"2026-01-01"}]}`},
		{"bad date", "refdata.yaml", "contracts:\n  - code: C\n    id: 55555555-0000-0000-0000-000000000001\n    partner_id: 11111111-1111-1111-1111-111111111111\n    start_date: soon\n    end_date: \"2026-01-01\"\n"},
		{"bad amount", "refdata.json", `{"pricings":[{"code":"P","id":"aaaaaaaa-0000-0000-0000-000000000001","channel":"Online","service_id":"22222222-2222-2222-2222-222222222222","corridor_id":"33333333-3333-3333-3333-333333333333","minimum_amount":"ten","maximum_amount":"1000"}]}`},
		{"bad applied_on", "refdata.json", `{"taxes":[{"code":"T","id":"bbbbbbbb-0000-0000-0000-000000000001","applied_on":"OnTotal"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed(tt.filename, []byte(tt.data))
			if !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("Expected CONFIG_ERROR, got %v", err)
			}
		})
	}
}

// TestLoadSeedMissingFile proves a missing path is reported
func TestLoadSeedMissingFile(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join("testdata", "absent.hcl"))
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("Expected CONFIG_ERROR, got %v", err)
	}
}
