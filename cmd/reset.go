package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	coinflip "github.com/avi-xyz/CoinFlip-sub001"
)

type resetCmd struct {
	force bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "discard the ledger and start over" }
func (*resetCmd) Usage() string {
	return `cfs reset -force

  Replaces the ledger with a fresh portfolio at the starting balance.
  All holdings and the transaction history are discarded.
`
}

func (p *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.force, "force", false, "Confirm discarding the current ledger.")
}

func (p *resetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !p.force {
		fmt.Fprintln(os.Stderr, "Error: reset discards the whole ledger, pass -force to confirm.")
		return subcommands.ExitUsageError
	}

	start, err := coinflip.ParseMoney(*startingBalance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -starting-balance %q: %v\n", *startingBalance, err)
		return subcommands.ExitUsageError
	}
	fresh, err := coinflip.NewPortfolio(*user, start)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if status := savePortfolio(fresh); status != subcommands.ExitSuccess {
		return status
	}

	fmt.Printf("Reset %s to a fresh portfolio with %s.\n", *ledgerFile, fresh.CashBalance())
	return subcommands.ExitSuccess
}
