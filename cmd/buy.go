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

type buyCmd struct {
	coinID string
	amount string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "spend cash on a coin at its current price" }
func (*buyCmd) Usage() string {
	return `cfs buy -c <coin_id> -a <amount>

  Spends the given amount of cash on the coin at the latest known price.
  The price comes from the local price book; run "cfs update" first.

Usage Examples:
$ cfs update -c bitcoin
$ cfs buy -c bitcoin -a 250
`
}

func (p *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.coinID, "c", "", "CoinGecko coin id, e.g. bitcoin.")
	f.StringVar(&p.amount, "a", "", "Cash amount to spend.")
}

func (p *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	coin, amount, status := parseTrade(p.coinID, p.amount)
	if status != subcommands.ExitSuccess {
		return status
	}

	portfolio, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	tx, err := portfolio.Buy(coin, amount)
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

// parseTrade resolves the common trade inputs: a coin with its latest
// price and the decimal amount from the command line.
func parseTrade(coinID, rawAmount string) (coinflip.Coin, coinflip.Money, subcommands.ExitStatus) {
	if coinID == "" {
		fmt.Fprintln(os.Stderr, "Error: -c <coin_id> is required.")
		return coinflip.Coin{}, coinflip.Money{}, subcommands.ExitUsageError
	}
	if rawAmount == "" {
		fmt.Fprintln(os.Stderr, "Error: an amount is required.")
		return coinflip.Coin{}, coinflip.Money{}, subcommands.ExitUsageError
	}
	amount, err := coinflip.ParseMoney(rawAmount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid amount %q: %v\n", rawAmount, err)
		return coinflip.Coin{}, coinflip.Money{}, subcommands.ExitUsageError
	}

	price, ok := loadPrices().Lookup(coinID)
	if !ok || !price.IsPositive() {
		fmt.Fprintf(os.Stderr, "Error: no price for %q, run \"cfs update -c %s\" first.\n", coinID, coinID)
		return coinflip.Coin{}, coinflip.Money{}, subcommands.ExitFailure
	}
	return coinflip.NewCoin(coinID, symbolFor(coinID), "", price), amount, subcommands.ExitSuccess
}
