package coinflip

import "github.com/shopspring/decimal"

// dustThreshold is the quantity at or below which a holding is treated as
// closed: hidden from display, excluded from valuation, and ineligible
// for selling. 1e-8 units.
var dustThreshold = decimal.New(1, -8)

// DustThreshold returns the dust quantity as a Quantity value.
func DustThreshold() Quantity { return Quantity{value: dustThreshold} }

// Holding is the position of one portfolio in one coin: the quantity
// owned and the weighted-average price paid per unit. A holding is
// created on the first buy of a coin, mutated on every later buy or sell
// of that coin, and retained as an inert record once sold down to dust.
//
// AvgBuyPrice is meaningful only while the holding is open; once the
// quantity reaches dust the stored average is stale and must not be used
// for valuation.
type Holding struct {
	CoinID      string   `json:"coin"`
	CoinSymbol  string   `json:"symbol"`
	Quantity    Quantity `json:"quantity"`
	AvgBuyPrice Money    `json:"avg_buy_price"`
}

// Open reports whether the holding quantity is above the dust threshold.
func (h Holding) Open() bool {
	return h.Quantity.value.GreaterThan(dustThreshold)
}

// CostBasis is the total amount paid for the currently held quantity.
func (h Holding) CostBasis() Money {
	return h.AvgBuyPrice.Mul(h.Quantity)
}
