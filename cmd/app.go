// Package cmd implements the CLI application to manage a simulated
// coin portfolio.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	coinflip "github.com/avi-xyz/CoinFlip-sub001"
	"github.com/avi-xyz/CoinFlip-sub001/coingecko"
)

// Commands lists every subcommand; a main package registers them all.
var Commands = []subcommands.Command{
	&buyCmd{},
	&sellCmd{},
	&txCmd{},
	&holdingCmd{},
	&summaryCmd{},
	&resetCmd{},
	&updateCmd{},
	&serveCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "ledger.jsonl", "Path to the ledger file (JSONL format)")
var pricesFile = flag.String("prices-file", "prices.json", "Path to the local price book file")
var user = flag.String("user", "player1", "Owner of the portfolio, used when creating a fresh ledger")
var startingBalance = flag.String("starting-balance", "1000", "Cash a fresh portfolio begins with")

// loadPortfolio reads the ledger file, creating a fresh portfolio when
// the file does not exist yet.
func loadPortfolio() (*coinflip.Portfolio, error) {
	p, err := coinflip.LoadLedger(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning, ledger %q does not exist, starting a fresh portfolio", *ledgerFile)
		start, perr := coinflip.ParseMoney(*startingBalance)
		if perr != nil {
			return nil, fmt.Errorf("invalid -starting-balance %q: %w", *startingBalance, perr)
		}
		return coinflip.NewPortfolio(*user, start)
	}
	return p, err
}

// savePortfolio writes the ledger back to the app ledger file.
func savePortfolio(p *coinflip.Portfolio) subcommands.ExitStatus {
	if err := coinflip.SaveLedger(*ledgerFile, p); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving ledger %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// loadPrices reads the local price book; a missing file yields an
// empty book so valuation falls back to cost basis.
func loadPrices() *coingecko.PriceBook {
	book, err := coingecko.LoadPriceBook(*pricesFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: cannot read price book %q: %v\n", *pricesFile, err)
		}
		return coingecko.NewPriceBook()
	}
	return book
}

// printMarkdown renders markdown to the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		// fall back to the raw markdown
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
