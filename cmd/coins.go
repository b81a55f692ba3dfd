package cmd

import "strings"

// wellKnownSymbols maps common CoinGecko ids to their market symbol.
// Anything else just gets its id uppercased.
var wellKnownSymbols = map[string]string{
	"bitcoin":      "BTC",
	"ethereum":     "ETH",
	"dogecoin":     "DOGE",
	"pepe":         "PEPE",
	"solana":       "SOL",
	"cardano":      "ADA",
	"ripple":       "XRP",
	"litecoin":     "LTC",
	"shiba-inu":    "SHIB",
	"binancecoin":  "BNB",
	"polkadot":     "DOT",
	"the-open-network": "TON",
}

func symbolFor(coinID string) string {
	if s, ok := wellKnownSymbols[coinID]; ok {
		return s
	}
	return strings.ToUpper(coinID)
}
