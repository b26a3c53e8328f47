// Package output provides output formatting for quotes and validation reports.
// This package produces human and machine-readable outputs.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"remit-pricing/core/types"
	"remit-pricing/core/validation"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCLI, "":
		return FormatCLI, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want cli or json)", s)
	}
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes a quote
	Render(w io.Writer, q *Quote) error

	// RenderReport writes a validation report
	RenderReport(w io.Writer, r *validation.Report) error
}

// NewFormatter returns the formatter for f
func NewFormatter(f Format) Formatter {
	if f == FormatJSON {
		return JSONFormatter{}
	}
	return CLIFormatter{}
}

// Quote is the external shape of a resolution result. Money is rendered
// with two decimals and rates at full precision, both as strings.
type Quote struct {
	Contract    QuoteContract `json:"contract"`
	Pricing     QuotePricing  `json:"pricing"`
	Taxes       []QuoteTax    `json:"taxes"`
	BaseFee     string        `json:"base_fee"`
	Total       string        `json:"total"`
	EvaluatedAt time.Time     `json:"evaluated_at"`
}

// QuoteContract identifies the contract that gated the quote
type QuoteContract struct {
	ContractID string    `json:"contract_id"`
	Code       string    `json:"code"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// QuotePricing is the matched pricing rule
type QuotePricing struct {
	PricingID     string  `json:"pricing_id"`
	Code          string  `json:"code"`
	FixedAmount   *string `json:"fixed_amount"`
	Rate          *string `json:"rate"`
	MinimumAmount string  `json:"minimum_amount"`
	MaximumAmount string  `json:"maximum_amount"`
	Channel       string  `json:"channel"`
	AffiliateID   *string `json:"affiliate_id"`
	CorridorID    string  `json:"corridor_id"`
	ServiceID     string  `json:"service_id"`
}

// QuoteTax is one tax line
type QuoteTax struct {
	TaxID          string `json:"tax_id"`
	TaxCode        string `json:"tax_code"`
	AppliedOn      string `json:"applied_on"`
	Rate           string `json:"rate"`
	FixedAmount    string `json:"fixed_amount"`
	ComputedAmount string `json:"computed_amount"`
}

// NewQuote converts a resolution result into its external shape
func NewQuote(r *types.ResolveResult) *Quote {
	p := r.Pricing
	q := &Quote{
		Contract: QuoteContract{
			ContractID: r.Contract.ID.String(),
			Code:       r.Contract.Code,
			StartDate:  r.Contract.StartDate,
			EndDate:    r.Contract.EndDate,
		},
		Pricing: QuotePricing{
			PricingID:     p.ID.String(),
			Code:          p.Code,
			FixedAmount:   decimalString(p.FixedAmount),
			Rate:          decimalString(p.Rate),
			MinimumAmount: p.MinimumAmount.String(),
			MaximumAmount: p.MaximumAmount.String(),
			Channel:       p.Channel.String(),
			CorridorID:    p.CorridorID.String(),
			ServiceID:     p.ServiceID.String(),
		},
		Taxes:       make([]QuoteTax, 0, len(r.Taxes)),
		BaseFee:     money(r.BaseFee),
		Total:       money(r.Total),
		EvaluatedAt: r.EvaluatedAt,
	}
	if p.AffiliateID != nil {
		s := p.AffiliateID.String()
		q.Pricing.AffiliateID = &s
	}
	for _, t := range r.Taxes {
		q.Taxes = append(q.Taxes, QuoteTax{
			TaxID:          t.TaxID.String(),
			TaxCode:        t.TaxCode,
			AppliedOn:      t.AppliedOn.String(),
			Rate:           t.Rate.String(),
			FixedAmount:    t.FixedAmount.String(),
			ComputedAmount: money(t.ComputedAmount),
		})
	}
	return q
}

func money(d decimal.Decimal) string {
	return d.StringFixed(types.MoneyPlaces)
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// JSONFormatter renders indented JSON
type JSONFormatter struct{}

// Format implements Formatter
func (JSONFormatter) Format() Format { return FormatJSON }

// Render implements Formatter
func (JSONFormatter) Render(w io.Writer, q *Quote) error {
	return writeJSON(w, q)
}

// RenderReport implements Formatter
func (JSONFormatter) RenderReport(w io.Writer, r *validation.Report) error {
	return writeJSON(w, r)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// CLIFormatter renders a boxed summary table
type CLIFormatter struct{}

// Format implements Formatter
func (CLIFormatter) Format() Format { return FormatCLI }

const (
	boxTop    = "┌──────────────────────────────────────────────────────────────┐"
	boxRule   = "├──────────────────────────────────────────────────────────────┤"
	boxBottom = "└──────────────────────────────────────────────────────────────┘"
)

// Render implements Formatter
func (CLIFormatter) Render(w io.Writer, q *Quote) error {
	var b strings.Builder

	b.WriteString(boxTop + "\n")
	row(&b, "FEE QUOTE", "")
	b.WriteString(boxRule + "\n")
	row(&b, "Contract", q.Contract.Code)
	row(&b, "Pricing", q.Pricing.Code)
	row(&b, "Channel", q.Pricing.Channel)
	row(&b, "Bracket", q.Pricing.MinimumAmount+" - "+q.Pricing.MaximumAmount)
	b.WriteString(boxRule + "\n")
	row(&b, "Base fee", q.BaseFee)
	for _, t := range q.Taxes {
		row(&b, fmt.Sprintf("  └─ %s (%s)", t.TaxCode, t.AppliedOn), t.ComputedAmount)
	}
	b.WriteString(boxRule + "\n")
	row(&b, "TOTAL", q.Total)
	b.WriteString(boxBottom + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderReport implements Formatter
func (CLIFormatter) RenderReport(w io.Writer, r *validation.Report) error {
	var b strings.Builder
	if len(r.Issues) == 0 {
		b.WriteString("Reference data is valid\n")
	}
	for _, i := range r.Issues {
		fmt.Fprintf(&b, "%-7s %-9s %-38s %s\n", strings.ToUpper(string(i.Severity)), i.Entity, truncate(i.Code, 38), i.Message)
	}
	if len(r.Issues) > 0 {
		fmt.Fprintf(&b, "\n%d error(s), %d warning(s)\n",
			r.Count(validation.SeverityError), r.Count(validation.SeverityWarning))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "│ %-40s %19s │\n", truncate(label, 40), truncate(value, 19))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
