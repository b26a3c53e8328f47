// Package cmd - Reference data commands
package cmd

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"remit-pricing/core/output"
	"remit-pricing/core/ports"
	"remit-pricing/core/types"
	"remit-pricing/core/validation"
)

var refdataFormat string

var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Inspect and validate reference data",
}

var refdataValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check reference data against the authoring invariants",
	Long: `Load a full snapshot of contracts, pricings, taxes and tax rules and
check the invariants the engine relies on: bracket bounds, overlapping
brackets with the same scope, overlapping contracts, duplicate tax rules and
dangling tax references.

Exits non-zero when any error is found. Warnings do not fail the run.`,
	Args: cobra.NoArgs,
	RunE: runRefdataValidate,
}

var refdataListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reference data",
	Args:  cobra.NoArgs,
	RunE:  runRefdataList,
}

func init() {
	rootCmd.AddCommand(refdataCmd)
	refdataCmd.AddCommand(refdataValidateCmd)
	refdataCmd.AddCommand(refdataListCmd)

	refdataValidateCmd.Flags().StringVarP(&refdataFormat, "format", "f", "cli", "output format (cli, json)")
}

func loadSnapshot(cmd *cobra.Command) (*ports.Snapshot, error) {
	app, err := openApp(cmd)
	if err != nil {
		return nil, err
	}
	defer app.Close()
	return app.Store.Snapshot(cmd.Context())
}

func runRefdataValidate(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(refdataFormat)
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}

	report := validation.Validate(snap)
	if err := output.NewFormatter(format).RenderReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("reference data has %d error(s)", report.Count(validation.SeverityError))
	}
	return nil
}

func runRefdataList(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}
	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func printSnapshot(w io.Writer, snap *ports.Snapshot) {
	fmt.Fprintf(w, "CONTRACTS (%d)\n", len(snap.Contracts))
	for _, c := range snap.Contracts {
		fmt.Fprintf(w, "  %-20s partner=%s %s → %s %s\n",
			c.Code, c.PartnerID, c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"), enabledMark(c.Enabled))
	}

	fmt.Fprintf(w, "\nPRICINGS (%d)\n", len(snap.Pricings))
	for _, p := range snap.Pricings {
		scope := "*"
		if p.AffiliateID != nil {
			scope = p.AffiliateID.String()
		}
		fmt.Fprintf(w, "  %-20s %-8s [%s, %s] fixed=%s rate=%s affiliate=%s %s\n",
			p.Code, p.Channel, p.MinimumAmount, p.MaximumAmount,
			optional(p.FixedAmount), optional(p.Rate), scope, enabledMark(p.Enabled))
	}

	fmt.Fprintf(w, "\nTAXES (%d)\n", len(snap.Taxes))
	for _, t := range snap.Taxes {
		fmt.Fprintf(w, "  %-20s %-11s rate=%s fixed=%s %s\n",
			t.Code, t.AppliedOn, t.Rate, t.FixedAmount, enabledMark(t.Enabled))
	}

	fmt.Fprintf(w, "\nTAX RULES (%d)\n", len(snap.TaxRuleDetails))
	codes := taxCodes(snap.Taxes)
	for _, d := range snap.TaxRuleDetails {
		code, ok := codes[d.TaxID]
		if !ok {
			code = "?" + d.TaxID.String()
		}
		fmt.Fprintf(w, "  %-20s corridor=%s service=%s %s\n",
			code, d.CorridorID, d.ServiceID, enabledMark(d.Enabled))
	}
}

func taxCodes(taxes []types.Tax) map[types.TaxID]string {
	out := make(map[types.TaxID]string, len(taxes))
	for _, t := range taxes {
		out[t.ID] = t.Code
	}
	return out
}

func optional(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func enabledMark(enabled bool) string {
	if enabled {
		return ""
	}
	return "(disabled)"
}
