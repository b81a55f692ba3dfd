package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/avi-xyz/CoinFlip-sub001/renderer"
)

type holdingCmd struct{}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "list the open positions with their live valuation" }
func (*holdingCmd) Usage() string {
	return `cfs holding

  Lists every open position with its quantity, average buy price, cost
  basis, market value and unrealized gain. Positions below the dust
  threshold are hidden.
`
}

func (p *holdingCmd) SetFlags(f *flag.FlagSet) {}

func (p *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	portfolio, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HoldingsMarkdown(valuationOf(portfolio)))
	return subcommands.ExitSuccess
}
