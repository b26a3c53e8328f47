package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"remit-pricing/core/ports"
	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
)

// Seed records keep every value as a string so the three formats decode the
// same way. Conversion to domain types happens in one place below.

type seedFile struct {
	Contracts []seedContract `hcl:"contract,block" json:"contracts" yaml:"contracts"`
	Pricings  []seedPricing  `hcl:"pricing,block" json:"pricings" yaml:"pricings"`
	Taxes     []seedTax      `hcl:"tax,block" json:"taxes" yaml:"taxes"`
	TaxRules  []seedTaxRule  `hcl:"tax_rule,block" json:"tax_rules" yaml:"tax_rules"`
}

type seedContract struct {
	Code      string `hcl:"code,label" json:"code" yaml:"code"`
	ID        string `hcl:"id" json:"id" yaml:"id"`
	PartnerID string `hcl:"partner_id" json:"partner_id" yaml:"partner_id"`
	StartDate string `hcl:"start_date" json:"start_date" yaml:"start_date"`
	EndDate   string `hcl:"end_date" json:"end_date" yaml:"end_date"`
	Enabled   *bool  `hcl:"enabled,optional" json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

type seedPricing struct {
	Code          string  `hcl:"code,label" json:"code" yaml:"code"`
	ID            string  `hcl:"id" json:"id" yaml:"id"`
	Channel       string  `hcl:"channel" json:"channel" yaml:"channel"`
	ServiceID     string  `hcl:"service_id" json:"service_id" yaml:"service_id"`
	CorridorID    string  `hcl:"corridor_id" json:"corridor_id" yaml:"corridor_id"`
	AffiliateID   *string `hcl:"affiliate_id,optional" json:"affiliate_id,omitempty" yaml:"affiliate_id,omitempty"`
	MinimumAmount string  `hcl:"minimum_amount" json:"minimum_amount" yaml:"minimum_amount"`
	MaximumAmount string  `hcl:"maximum_amount" json:"maximum_amount" yaml:"maximum_amount"`
	FixedAmount   *string `hcl:"fixed_amount,optional" json:"fixed_amount,omitempty" yaml:"fixed_amount,omitempty"`
	Rate          *string `hcl:"rate,optional" json:"rate,omitempty" yaml:"rate,omitempty"`
	Enabled       *bool   `hcl:"enabled,optional" json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

type seedTax struct {
	Code        string  `hcl:"code,label" json:"code" yaml:"code"`
	ID          string  `hcl:"id" json:"id" yaml:"id"`
	Rate        *string `hcl:"rate,optional" json:"rate,omitempty" yaml:"rate,omitempty"`
	FixedAmount *string `hcl:"fixed_amount,optional" json:"fixed_amount,omitempty" yaml:"fixed_amount,omitempty"`
	AppliedOn   string  `hcl:"applied_on" json:"applied_on" yaml:"applied_on"`
	Enabled     *bool   `hcl:"enabled,optional" json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

type seedTaxRule struct {
	ID         string `hcl:"id,label" json:"id" yaml:"id"`
	TaxID      string `hcl:"tax_id" json:"tax_id" yaml:"tax_id"`
	CorridorID string `hcl:"corridor_id" json:"corridor_id" yaml:"corridor_id"`
	ServiceID  string `hcl:"service_id" json:"service_id" yaml:"service_id"`
	Enabled    *bool  `hcl:"enabled,optional" json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// LoadSeedFile reads reference data from an .hcl, .yaml/.yml or .json file
func LoadSeedFile(path string) (*ports.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to read seed file", err).
			WithContext("path", path)
	}
	return ParseSeed(filepath.Base(path), data)
}

// ParseSeed decodes seed data. The format is taken from the file extension.
func ParseSeed(filename string, data []byte) (*ports.Snapshot, error) {
	var f seedFile

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".hcl":
		if err := hclsimple.Decode(filename, data, nil, &f); err != nil {
			return nil, errors.Wrap(errors.TypeConfig, "failed to parse HCL seed", err).
				WithContext("file", filename)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.TypeConfig, "failed to parse YAML seed", err).
				WithContext("file", filename)
		}
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.TypeConfig, "failed to parse JSON seed", err).
				WithContext("file", filename)
		}
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported seed format %q", ext).
			WithContext("file", filename)
	}

	snap, err := f.snapshot()
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "invalid seed record", err).
			WithContext("file", filename)
	}
	return snap, nil
}

func (f *seedFile) snapshot() (*ports.Snapshot, error) {
	snap := &ports.Snapshot{
		Contracts:      make([]types.Contract, 0, len(f.Contracts)),
		Pricings:       make([]types.Pricing, 0, len(f.Pricings)),
		Taxes:          make([]types.Tax, 0, len(f.Taxes)),
		TaxRuleDetails: make([]types.TaxRuleDetail, 0, len(f.TaxRules)),
	}

	for _, r := range f.Contracts {
		c, err := r.contract()
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", r.Code, err)
		}
		snap.Contracts = append(snap.Contracts, c)
	}
	for _, r := range f.Pricings {
		p, err := r.pricing()
		if err != nil {
			return nil, fmt.Errorf("pricing %s: %w", r.Code, err)
		}
		snap.Pricings = append(snap.Pricings, p)
	}
	for _, r := range f.Taxes {
		t, err := r.tax()
		if err != nil {
			return nil, fmt.Errorf("tax %s: %w", r.Code, err)
		}
		snap.Taxes = append(snap.Taxes, t)
	}
	for _, r := range f.TaxRules {
		d, err := r.rule()
		if err != nil {
			return nil, fmt.Errorf("tax rule %s: %w", r.ID, err)
		}
		snap.TaxRuleDetails = append(snap.TaxRuleDetails, d)
	}
	return snap, nil
}

func (r seedContract) contract() (types.Contract, error) {
	var (
		c   = types.Contract{Code: r.Code, Enabled: enabled(r.Enabled)}
		err error
	)
	if c.ID, err = types.ParseContractID(r.ID); err != nil {
		return c, err
	}
	if c.PartnerID, err = types.ParsePartnerID(r.PartnerID); err != nil {
		return c, err
	}
	if c.StartDate, err = parseDate(r.StartDate); err != nil {
		return c, fmt.Errorf("start_date: %w", err)
	}
	if c.EndDate, err = parseDate(r.EndDate); err != nil {
		return c, fmt.Errorf("end_date: %w", err)
	}
	return c, nil
}

func (r seedPricing) pricing() (types.Pricing, error) {
	var (
		p = types.Pricing{
			Code:    r.Code,
			Channel: types.Channel(r.Channel),
			Enabled: enabled(r.Enabled),
		}
		err error
	)
	if p.ID, err = types.ParsePricingID(r.ID); err != nil {
		return p, err
	}
	if p.ServiceID, err = types.ParseServiceID(r.ServiceID); err != nil {
		return p, err
	}
	if p.CorridorID, err = types.ParseCorridorID(r.CorridorID); err != nil {
		return p, err
	}
	if r.AffiliateID != nil && *r.AffiliateID != "" {
		a, err := types.ParseAffiliateID(*r.AffiliateID)
		if err != nil {
			return p, err
		}
		p.AffiliateID = &a
	}
	if p.MinimumAmount, err = decimal.NewFromString(r.MinimumAmount); err != nil {
		return p, fmt.Errorf("minimum_amount: %w", err)
	}
	if p.MaximumAmount, err = decimal.NewFromString(r.MaximumAmount); err != nil {
		return p, fmt.Errorf("maximum_amount: %w", err)
	}
	if p.FixedAmount, err = optionalDecimal(r.FixedAmount); err != nil {
		return p, fmt.Errorf("fixed_amount: %w", err)
	}
	if p.Rate, err = optionalDecimal(r.Rate); err != nil {
		return p, fmt.Errorf("rate: %w", err)
	}
	return p, nil
}

func (r seedTax) tax() (types.Tax, error) {
	var (
		t   = types.Tax{Code: r.Code, Enabled: enabled(r.Enabled)}
		err error
	)
	if t.ID, err = types.ParseTaxID(r.ID); err != nil {
		return t, err
	}
	if t.AppliedOn, err = types.ParseAppliedOn(r.AppliedOn); err != nil {
		return t, err
	}
	rate, err := optionalDecimal(r.Rate)
	if err != nil {
		return t, fmt.Errorf("rate: %w", err)
	}
	if rate != nil {
		t.Rate = *rate
	}
	fixed, err := optionalDecimal(r.FixedAmount)
	if err != nil {
		return t, fmt.Errorf("fixed_amount: %w", err)
	}
	if fixed != nil {
		t.FixedAmount = *fixed
	}
	return t, nil
}

func (r seedTaxRule) rule() (types.TaxRuleDetail, error) {
	var (
		d   = types.TaxRuleDetail{Enabled: enabled(r.Enabled)}
		err error
	)
	if d.ID, err = types.ParseTaxRuleDetailID(r.ID); err != nil {
		return d, err
	}
	if d.TaxID, err = types.ParseTaxID(r.TaxID); err != nil {
		return d, err
	}
	if d.CorridorID, err = types.ParseCorridorID(r.CorridorID); err != nil {
		return d, err
	}
	if d.ServiceID, err = types.ParseServiceID(r.ServiceID); err != nil {
		return d, err
	}
	return d, nil
}

// enabled defaults omitted flags to true
func enabled(b *bool) bool {
	return b == nil || *b
}

func optionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates (UTC midnight)
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
