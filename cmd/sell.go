package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	coinflip "github.com/avi-xyz/CoinFlip-sub001"
	"github.com/avi-xyz/CoinFlip-sub001/renderer"
)

type sellCmd struct {
	coinID   string
	quantity string
	all      bool
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell coin holdings at the current price" }
func (*sellCmd) Usage() string {
	return `cfs sell -c <coin_id> (-q <quantity> | -all)

  Sells the given quantity of a held coin at the latest known price and
  credits the proceeds to the cash balance.

Usage Examples:
$ cfs sell -c bitcoin -q 0.005
$ cfs sell -c bitcoin -all
`
}

func (p *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.coinID, "c", "", "CoinGecko coin id, e.g. bitcoin.")
	f.StringVar(&p.quantity, "q", "", "Quantity of coin to sell.")
	f.BoolVar(&p.all, "all", false, "Sell the entire position.")
}

func (p *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.coinID == "" {
		fmt.Fprintln(os.Stderr, "Error: -c <coin_id> is required.")
		return subcommands.ExitUsageError
	}
	if p.quantity == "" && !p.all {
		fmt.Fprintln(os.Stderr, "Error: either -q <quantity> or -all is required.")
		return subcommands.ExitUsageError
	}

	portfolio, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	quantity := coinflip.Quantity{}
	if p.all {
		h, ok := portfolio.Holding(p.coinID)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no position in %q.\n", p.coinID)
			return subcommands.ExitFailure
		}
		quantity = h.Quantity
	} else {
		quantity, err = coinflip.ParseQuantity(p.quantity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid quantity %q: %v\n", p.quantity, err)
			return subcommands.ExitUsageError
		}
	}

	price, ok := loadPrices().Lookup(p.coinID)
	if !ok || !price.IsPositive() {
		fmt.Fprintf(os.Stderr, "Error: no price for %q, run \"cfs update -c %s\" first.\n", p.coinID, p.coinID)
		return subcommands.ExitFailure
	}

	tx, err := portfolio.Sell(coinflip.NewCoin(p.coinID, symbolFor(p.coinID), "", price), quantity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if status := savePortfolio(portfolio); status != subcommands.ExitSuccess {
		return status
	}

	fmt.Println(renderer.Transaction(tx))
	return subcommands.ExitSuccess
}
