package coinflip

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/exp/maps"
)

// DefaultStartingBalance is the cash a fresh portfolio begins with.
var DefaultStartingBalance = M(1000)

// Portfolio owns a user's simulated cash balance, the collection of
// holdings, and the append-only transaction log. Buy and Sell are the
// only mutating operations; both validate fully before touching any
// state, so a failed call leaves the portfolio byte-for-byte unchanged.
//
// A portfolio is owned by one logical session. Mutations are serialized
// by an internal mutex; readers take a consistent Snapshot before
// computing aggregates, so they never observe a torn mid-operation state.
type Portfolio struct {
	mu sync.RWMutex

	userID   string
	starting Money
	cash     Money
	holdings map[string]*Holding
	log      []Transaction

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewPortfolio creates a fresh portfolio with the given starting cash and
// no holdings. Reset is implemented as wholesale replacement: discard the
// old portfolio and call NewPortfolio again.
func NewPortfolio(userID string, startingBalance Money) (*Portfolio, error) {
	if startingBalance.IsNegative() {
		return nil, fmt.Errorf("starting balance must not be negative, got %s: %w", startingBalance, ErrInvalidAmount)
	}
	return &Portfolio{
		userID:   userID,
		starting: startingBalance,
		cash:     startingBalance,
		holdings: make(map[string]*Holding),
		now:      time.Now,
	}, nil
}

// UserID returns the owning user's identifier.
func (p *Portfolio) UserID() string { return p.userID }

// StartingBalance returns the cash the portfolio was created with.
func (p *Portfolio) StartingBalance() Money { return p.starting }

// CashBalance returns the current cash balance. It is always >= 0.
func (p *Portfolio) CashBalance() Money {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cash
}

// Holding returns the holding for a coin id, open or dust, and whether
// one exists at all.
func (p *Portfolio) Holding(coinID string) (Holding, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.holdings[coinID]
	if !ok {
		return Holding{}, false
	}
	return *h, true
}

// Holdings returns a copy of every holding, dust included, sorted by
// coin id for stable iteration.
func (p *Portfolio) Holdings() []Holding {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.holdingsLocked()
}

func (p *Portfolio) holdingsLocked() []Holding {
	ids := maps.Keys(p.holdings)
	slices.Sort(ids)
	out := make([]Holding, 0, len(ids))
	for _, id := range ids {
		out = append(out, *p.holdings[id])
	}
	return out
}

// Transactions returns a copy of the transaction log in chronological
// order. Most-recent-first presentation is a display concern.
func (p *Portfolio) Transactions() []Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.log)
}

// Buy spends cashAmount of the cash balance on the given coin at its
// current price. It debits the cash, creates or grows the holding using
// the weighted-average-cost method, and appends a buy transaction whose
// TotalValue is exactly the cash spent.
func (p *Portfolio) Buy(coin Coin, cashAmount Money) (Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !coin.Price.IsPositive() {
		return Transaction{}, fmt.Errorf("cannot buy %s: price must be positive, got %s: %w", coin.ID, coin.Price, ErrInvalidAmount)
	}
	if !cashAmount.IsPositive() {
		return Transaction{}, fmt.Errorf("cannot buy %s: amount must be positive, got %s: %w", coin.ID, cashAmount, ErrInvalidAmount)
	}
	if p.cash.LessThan(cashAmount) {
		return Transaction{}, fmt.Errorf("cannot buy %s for %s: cash balance is %s: %w", coin.ID, cashAmount, p.cash, ErrInsufficientFunds)
	}

	quantity := cashAmount.DivPrice(coin.Price)

	// All validations passed: mutate cash, holding and log together.
	p.cash = p.cash.Sub(cashAmount)
	p.applyBuy(coin.ID, coin.Symbol, quantity, coin.Price)
	tx := newTransaction(SideBuy, p.userID, coin, quantity, cashAmount, p.now())
	p.log = append(p.log, tx)
	return tx, nil
}

// Sell disposes of quantity units of the given coin at its current price.
// It credits the proceeds, decrements the holding, and appends a sell
// transaction whose TotalValue is exactly the proceeds. The holding's
// average buy price is unchanged: selling does not alter the cost of
// what remains.
func (p *Portfolio) Sell(coin Coin, quantity Quantity) (Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !coin.Price.IsPositive() {
		return Transaction{}, fmt.Errorf("cannot sell %s: price must be positive, got %s: %w", coin.ID, coin.Price, ErrInvalidAmount)
	}
	if !quantity.IsPositive() {
		return Transaction{}, fmt.Errorf("cannot sell %s: quantity must be positive, got %s: %w", coin.ID, quantity, ErrInvalidAmount)
	}
	h, ok := p.holdings[coin.ID]
	if !ok || !h.Open() {
		return Transaction{}, fmt.Errorf("cannot sell %s: no open position: %w", coin.ID, ErrNoPosition)
	}
	if h.Quantity.LessThan(quantity) {
		return Transaction{}, fmt.Errorf("cannot sell %s of %s: position is only %s: %w", quantity, coin.ID, h.Quantity, ErrInsufficientHoldings)
	}

	proceeds := coin.Price.Mul(quantity)

	p.cash = p.cash.Add(proceeds)
	h.Quantity = h.Quantity.Sub(quantity)
	tx := newTransaction(SideSell, p.userID, coin, quantity, proceeds, p.now())
	p.log = append(p.log, tx)
	return tx, nil
}

// applyBuy creates or grows the holding for a coin. A holding whose
// quantity is exactly zero takes a fresh cost basis; any non-zero
// remainder, dust included, is folded into the weighted average so the
// log replays to the same state.
func (p *Portfolio) applyBuy(coinID, symbol string, quantity Quantity, price Money) {
	h, ok := p.holdings[coinID]
	if !ok || h.Quantity.IsZero() {
		p.holdings[coinID] = &Holding{
			CoinID:      coinID,
			CoinSymbol:  symbol,
			Quantity:    quantity,
			AvgBuyPrice: price,
		}
		return
	}
	totalCost := h.AvgBuyPrice.Mul(h.Quantity).Add(price.Mul(quantity))
	newQuantity := h.Quantity.Add(quantity)
	h.AvgBuyPrice = totalCost.Div(newQuantity)
	h.Quantity = newQuantity
	if symbol != "" {
		h.CoinSymbol = symbol
	}
}

// Replay rebuilds a portfolio from a starting balance and a chronological
// transaction log. It is the audit path of the ledger: for any sequence
// of successful operations, replaying their log reproduces the current
// cash balance and every holding quantity exactly.
func Replay(userID string, startingBalance Money, log []Transaction) (*Portfolio, error) {
	p, err := NewPortfolio(userID, startingBalance)
	if err != nil {
		return nil, err
	}
	for i, tx := range log {
		switch tx.Side {
		case SideBuy:
			if p.cash.LessThan(tx.TotalValue) {
				return nil, fmt.Errorf("replay: transaction %d (%s) overspends cash %s by buying for %s", i, tx.ID, p.cash, tx.TotalValue)
			}
			p.cash = p.cash.Sub(tx.TotalValue)
			p.applyBuy(tx.CoinID, tx.CoinSymbol, tx.Quantity, tx.PricePerCoin)
		case SideSell:
			h, ok := p.holdings[tx.CoinID]
			if !ok || h.Quantity.LessThan(tx.Quantity) {
				return nil, fmt.Errorf("replay: transaction %d (%s) sells %s of %s without sufficient position", i, tx.ID, tx.Quantity, tx.CoinID)
			}
			p.cash = p.cash.Add(tx.TotalValue)
			h.Quantity = h.Quantity.Sub(tx.Quantity)
		default:
			return nil, fmt.Errorf("replay: transaction %d (%s) has unknown side %q", i, tx.ID, tx.Side)
		}
		p.log = append(p.log, tx)
	}
	return p, nil
}

// Audit replays the portfolio's own log and verifies that it reproduces
// the live cash balance and every holding quantity.
func (p *Portfolio) Audit() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	replayed, err := Replay(p.userID, p.starting, p.log)
	if err != nil {
		return err
	}
	if !replayed.cash.Equal(p.cash) {
		return fmt.Errorf("audit: replayed cash %s differs from live cash %s", replayed.cash, p.cash)
	}
	for id, h := range p.holdings {
		r, ok := replayed.holdings[id]
		if !ok {
			return fmt.Errorf("audit: holding %s missing from replay", id)
		}
		if !r.Quantity.Equal(h.Quantity) {
			return fmt.Errorf("audit: holding %s replayed quantity %s differs from live %s", id, r.Quantity, h.Quantity)
		}
	}
	for id := range replayed.holdings {
		if _, ok := p.holdings[id]; !ok {
			return fmt.Errorf("audit: replay produced unexpected holding %s", id)
		}
	}
	return nil
}
