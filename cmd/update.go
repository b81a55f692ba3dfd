package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/avi-xyz/CoinFlip-sub001/coingecko"
)

type updateCmd struct {
	coins string
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch the latest coin prices from CoinGecko" }
func (*updateCmd) Usage() string {
	return `cfs update [-c <coin_ids>]

  Fetches the current USD price of the given coins (comma separated
  CoinGecko ids) and merges them into the local price book. Without -c,
  it refreshes every coin currently held.

Usage Examples:
$ cfs update -c bitcoin,ethereum,pepe
$ cfs update
`
}

func (p *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.coins, "c", "", "Comma separated CoinGecko ids to refresh.")
}

func (p *updateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var ids []string
	if p.coins != "" {
		for _, id := range strings.Split(p.coins, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	} else {
		portfolio, err := loadPortfolio()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		for _, h := range portfolio.Holdings() {
			if h.Open() {
				ids = append(ids, h.CoinID)
			}
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to update: no coins given and no open positions.")
		return subcommands.ExitSuccess
	}

	client := coingecko.NewClient(time.Minute)
	prices, err := client.SimplePrices(ids)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	book := loadPrices()
	book.Set(prices)
	if err := coingecko.SavePriceBook(*pricesFile, book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving price book %q: %v\n", *pricesFile, err)
		return subcommands.ExitFailure
	}

	for _, id := range ids {
		if price, ok := book.Lookup(id); ok {
			fmt.Printf("%s: %s\n", id, price)
		} else {
			fmt.Printf("%s: no quote\n", id)
		}
	}
	return subcommands.ExitSuccess
}
