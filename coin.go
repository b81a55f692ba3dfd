package coinflip

// Coin is an immutable reference to a tradable asset: a stable identity
// plus the latest quoted price. Coins are supplied by the external price
// feed; the ledger only ever reads them.
type Coin struct {
	ID     string // stable identifier, unique across the catalog (e.g. "bitcoin")
	Symbol string // display ticker (e.g. "BTC")
	Name   string // human readable name, optional
	Price  Money  // latest quoted price per unit
}

// NewCoin creates a coin reference with its current price.
func NewCoin(id, symbol, name string, price Money) Coin {
	return Coin{ID: id, Symbol: symbol, Name: name, Price: price}
}

// PriceLookup resolves the current price for a coin id. It reports false
// when no live price is known, in which case valuation falls back to the
// holding's own average buy price.
type PriceLookup func(coinID string) (Money, bool)

// NoPrices is a PriceLookup that knows nothing; every holding is valued
// at its cost basis.
func NoPrices(string) (Money, bool) { return Money{}, false }
