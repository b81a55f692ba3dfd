package coinflip

// Snapshot is a consistent, immutable copy of a portfolio's state at a
// single point in time. Readers value a snapshot rather than the live
// portfolio, so concurrent mutation can never produce torn aggregates.
type Snapshot struct {
	UserID          string
	StartingBalance Money
	CashBalance     Money
	Holdings        []Holding // every holding, dust included, sorted by coin id
	Transactions    []Transaction
}

// Snapshot returns a consistent copy of the portfolio state.
func (p *Portfolio) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		UserID:          p.userID,
		StartingBalance: p.starting,
		CashBalance:     p.cash,
		Holdings:        p.holdingsLocked(),
		Transactions:    append([]Transaction(nil), p.log...),
	}
}

// Valuation computes display aggregates over a portfolio snapshot and an
// externally supplied price lookup. It is a stateless calculator: all
// values are re-derived on the fly and nothing here is ever stored back
// as authoritative state.
type Valuation struct {
	snap  Snapshot
	price PriceLookup
}

// NewValuation creates a valuation over a snapshot. A nil lookup values
// every holding at its own cost basis.
func NewValuation(snap Snapshot, price PriceLookup) Valuation {
	if price == nil {
		price = NoPrices
	}
	return Valuation{snap: snap, price: price}
}

// Snapshot returns the underlying portfolio snapshot.
func (v Valuation) Snapshot() Snapshot { return v.snap }

// VisibleHoldings returns the open holdings, i.e. those above the dust
// threshold. Sub-dust balances are hidden so near-zero noise from
// decimal division during sells never reaches the display.
func (v Valuation) VisibleHoldings() []Holding {
	out := make([]Holding, 0, len(v.snap.Holdings))
	for _, h := range v.snap.Holdings {
		if h.Open() {
			out = append(out, h)
		}
	}
	return out
}

// MarketValue returns the current value of one holding, falling back to
// its average buy price when no live price is known. This keeps
// valuation well-defined even with a stale or missing feed.
func (v Valuation) MarketValue(h Holding) Money {
	price, ok := v.price(h.CoinID)
	if !ok || !price.IsPositive() {
		price = h.AvgBuyPrice
	}
	return price.Mul(h.Quantity)
}

// TotalHoldingsValue sums the market value of every visible holding.
func (v Valuation) TotalHoldingsValue() Money {
	var total Money
	for _, h := range v.VisibleHoldings() {
		total = total.Add(v.MarketValue(h))
	}
	return total
}

// TotalCostBasis sums quantity times average buy price over the visible
// holdings.
func (v Valuation) TotalCostBasis() Money {
	var total Money
	for _, h := range v.VisibleHoldings() {
		total = total.Add(h.CostBasis())
	}
	return total
}

// UnrealizedGains is the paper profit or loss on the visible holdings:
// total holdings value minus total cost basis.
func (v Valuation) UnrealizedGains() Money {
	return v.TotalHoldingsValue().Sub(v.TotalCostBasis())
}

// GainPercent is the unrealized gain as a percentage of the cost basis,
// or 0 when nothing is held.
func (v Valuation) GainPercent() Percent {
	return PercentOf(v.UnrealizedGains(), v.TotalCostBasis())
}

// NetWorth is the cash balance plus the total holdings value.
func (v Valuation) NetWorth() Money {
	return v.snap.CashBalance.Add(v.TotalHoldingsValue())
}
