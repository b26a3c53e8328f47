// Package cmd - quote command
package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"remit-pricing/core/output"
	"remit-pricing/core/types"
)

var (
	quotePartner   string
	quoteService   string
	quoteCorridor  string
	quoteAffiliate string
	quoteChannel   string
	quoteAmount    string
	quoteAt        string
	quoteFormat    string
)

// quoteCmd resolves the fee of one transaction
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Resolve the fee and taxes of a transaction",
	Long: `Resolve the contract, pricing rule and taxes that govern a transaction
and print the itemized fee.

Examples:
  remit-pricing quote --seed refdata.hcl --partner 6f1c... --service 0b2e... \
      --corridor 9a7d... --channel Online --amount 100
  remit-pricing quote --format json --affiliate 41c0... ... --amount 250.50`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	f := quoteCmd.Flags()
	f.StringVar(&quotePartner, "partner", "", "partner id [REQUIRED]")
	f.StringVar(&quoteService, "service", "", "service id [REQUIRED]")
	f.StringVar(&quoteCorridor, "corridor", "", "corridor id [REQUIRED]")
	f.StringVar(&quoteAffiliate, "affiliate", "", "affiliate id")
	f.StringVar(&quoteChannel, "channel", "", "channel, e.g. Branch, Mobile, Online [REQUIRED]")
	f.StringVar(&quoteAmount, "amount", "", "transfer amount [REQUIRED]")
	f.StringVar(&quoteAt, "at", "", "evaluation time, RFC 3339 (default: now)")
	f.StringVarP(&quoteFormat, "format", "f", "cli", "output format (cli, json)")

	for _, name := range []string{"partner", "service", "corridor", "channel", "amount"} {
		_ = quoteCmd.MarkFlagRequired(name)
	}
}

func runQuote(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(quoteFormat)
	if err != nil {
		return err
	}

	req, err := buildQuoteRequest()
	if err != nil {
		return err
	}

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Engine.Resolve(cmd.Context(), req)
	if err != nil {
		return err
	}

	return output.NewFormatter(format).Render(cmd.OutOrStdout(), output.NewQuote(result))
}

func buildQuoteRequest() (types.ResolveRequest, error) {
	var (
		req = types.ResolveRequest{Channel: types.Channel(quoteChannel)}
		err error
	)
	if req.PartnerID, err = types.ParsePartnerID(quotePartner); err != nil {
		return req, err
	}
	if req.ServiceID, err = types.ParseServiceID(quoteService); err != nil {
		return req, err
	}
	if req.CorridorID, err = types.ParseCorridorID(quoteCorridor); err != nil {
		return req, err
	}
	if quoteAffiliate != "" {
		a, err := types.ParseAffiliateID(quoteAffiliate)
		if err != nil {
			return req, err
		}
		req.AffiliateID = &a
	}
	if req.Amount, err = decimal.NewFromString(quoteAmount); err != nil {
		return req, fmt.Errorf("invalid amount %q: %w", quoteAmount, err)
	}
	if quoteAt != "" {
		if req.EvaluationTime, err = time.Parse(time.RFC3339, quoteAt); err != nil {
			return req, fmt.Errorf("invalid --at: %w", err)
		}
	}
	return req, nil
}
