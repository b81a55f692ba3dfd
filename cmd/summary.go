package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/avi-xyz/CoinFlip-sub001/renderer"
)

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the headline portfolio figures" }
func (*summaryCmd) Usage() string {
	return `cfs summary

  Shows the cash balance, total holdings value, cost basis, unrealized
  gains and net worth, valued against the local price book.
`
}

func (p *summaryCmd) SetFlags(f *flag.FlagSet) {}

func (p *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	portfolio, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.SummaryMarkdown(valuationOf(portfolio)))
	return subcommands.ExitSuccess
}
