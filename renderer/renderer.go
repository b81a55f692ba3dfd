// Package renderer turns portfolio state into markdown for the CLI.
package renderer

import (
	"fmt"
	"strings"

	coinflip "github.com/avi-xyz/CoinFlip-sub001"
)

// Transaction renders a transaction to a one-line string.
func Transaction(tx coinflip.Transaction) string {
	name := tx.CoinSymbol
	if name == "" {
		name = tx.CoinID
	}
	switch tx.Side {
	case coinflip.SideBuy:
		return fmt.Sprintf("Bought %s %s for %s", tx.Quantity, name, tx.TotalValue)
	case coinflip.SideSell:
		return fmt.Sprintf("Sold %s %s for %s", tx.Quantity, name, tx.TotalValue)
	default:
		return string(tx.Side)
	}
}

// TransactionsMarkdown renders the transaction log, most recent first.
func TransactionsMarkdown(txs []coinflip.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprintln(&b, "No transactions yet.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Time | Side | Coin | Quantity | Price | Total |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|")
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		name := tx.CoinSymbol
		if name == "" {
			name = tx.CoinID
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			tx.Time.Format("2006-01-02 15:04:05"),
			tx.Side,
			name,
			tx.Quantity,
			tx.PricePerCoin,
			tx.TotalValue,
		)
	}
	return b.String()
}

// HoldingsMarkdown renders the open positions with their live valuation.
func HoldingsMarkdown(v coinflip.Valuation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings\n\n")

	holdings := v.VisibleHoldings()
	if len(holdings) == 0 {
		fmt.Fprintln(&b, "No open positions.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Coin | Quantity | Avg Buy Price | Cost Basis | Market Value | Gain |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|")
	for _, h := range holdings {
		name := h.CoinSymbol
		if name == "" {
			name = h.CoinID
		}
		value := v.MarketValue(h)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			name,
			h.Quantity,
			h.AvgBuyPrice,
			h.CostBasis(),
			value,
			value.Sub(h.CostBasis()).SignedString(),
		)
	}
	return b.String()
}

// SummaryMarkdown renders the headline portfolio figures.
func SummaryMarkdown(v coinflip.Valuation) string {
	snap := v.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio Summary for %s\n\n", snap.UserID)
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Cash Balance | %s |\n", snap.CashBalance)
	fmt.Fprintf(&b, "| Holdings Value | %s |\n", v.TotalHoldingsValue())
	fmt.Fprintf(&b, "| Cost Basis | %s |\n", v.TotalCostBasis())
	fmt.Fprintf(&b, "| Unrealized Gains | %s (%s) |\n", v.UnrealizedGains().SignedString(), v.GainPercent().SignedString())
	fmt.Fprintf(&b, "| Net Worth | %s |\n", v.NetWorth())
	fmt.Fprintf(&b, "\nStarted with %s across %d open positions.\n",
		snap.StartingBalance, len(v.VisibleHoldings()))
	return b.String()
}
