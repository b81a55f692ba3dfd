package coinflip

import (
	"errors"
	"testing"
)

func TestPortfolio_Buy_Validation(t *testing.T) {
	btc := coin("bitcoin", "BTC", 50000)

	testCases := []struct {
		name    string
		coin    Coin
		cash    Money
		wantErr error
	}{
		{
			name:    "zero amount",
			coin:    btc,
			cash:    USD(0),
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			coin:    btc,
			cash:    USD(-10),
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "zero price",
			coin:    coin("bitcoin", "BTC", 0),
			cash:    USD(100),
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative price",
			coin:    coin("bitcoin", "BTC", -1),
			cash:    USD(100),
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "amount exceeds cash",
			coin:    btc,
			cash:    USD(1000.01),
			wantErr: ErrInsufficientFunds,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPortfolio(t, 1000)
			_, err := p.Buy(tc.coin, tc.cash)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Buy() error = %v, want %v", err, tc.wantErr)
			}
			// The failed buy must leave the portfolio untouched.
			if !p.CashBalance().Equal(USD(1000)) {
				t.Errorf("cash after failed buy = %s, want $1,000.00", p.CashBalance())
			}
			if got := len(p.Transactions()); got != 0 {
				t.Errorf("failed buy appended %d transactions, want 0", got)
			}
			if got := len(p.Holdings()); got != 0 {
				t.Errorf("failed buy created %d holdings, want 0", got)
			}
		})
	}
}

func TestPortfolio_Buy_CreatesHolding(t *testing.T) {
	p := newTestPortfolio(t, 1000)
	btc := coin("bitcoin", "BTC", 250)

	tx := mustBuy(t, p, btc, 500)

	if !p.CashBalance().Equal(USD(500)) {
		t.Errorf("cash = %s, want $500.00", p.CashBalance())
	}
	h, ok := p.Holding("bitcoin")
	if !ok {
		t.Fatal("no holding created for bitcoin")
	}
	if !h.Quantity.Equal(QTY(2)) {
		t.Errorf("quantity = %s, want 2", h.Quantity)
	}
	if !h.AvgBuyPrice.Equal(USD(250)) {
		t.Errorf("avg buy price = %s, want $250.00", h.AvgBuyPrice)
	}
	if tx.Side != SideBuy {
		t.Errorf("side = %q, want %q", tx.Side, SideBuy)
	}
	if !tx.TotalValue.Equal(USD(500)) {
		t.Errorf("total value = %s, want $500.00", tx.TotalValue)
	}
	if !tx.Quantity.Equal(QTY(2)) {
		t.Errorf("tx quantity = %s, want 2", tx.Quantity)
	}
	if tx.CoinSymbol != "BTC" {
		t.Errorf("tx symbol = %q, want BTC", tx.CoinSymbol)
	}
	if tx.ID == "" {
		t.Error("tx id is empty")
	}
}

func TestPortfolio_Buy_WeightedAverage(t *testing.T) {
	// Buying 100 units at 10 then 100 units at 20 yields 200 units at an
	// average of 15.
	p := newTestPortfolio(t, 3000)

	mustBuy(t, p, coin("sol", "SOL", 10), 1000)
	mustBuy(t, p, coin("sol", "SOL", 20), 2000)

	h, _ := p.Holding("sol")
	if !h.Quantity.Equal(QTY(200)) {
		t.Errorf("quantity = %s, want 200", h.Quantity)
	}
	if !h.AvgBuyPrice.Equal(USD(15)) {
		t.Errorf("avg buy price = %s, want $15.00", h.AvgBuyPrice)
	}
	if !p.CashBalance().IsZero() {
		t.Errorf("cash = %s, want $0.00", p.CashBalance())
	}
}

func TestPortfolio_Sell_KeepsCostBasis(t *testing.T) {
	p := newTestPortfolio(t, 3000)
	mustBuy(t, p, coin("sol", "SOL", 10), 1000)
	mustBuy(t, p, coin("sol", "SOL", 20), 2000)

	// Selling does not change the cost of what remains.
	mustSell(t, p, coin("sol", "SOL", 20), QTY(50))

	h, _ := p.Holding("sol")
	if !h.Quantity.Equal(QTY(150)) {
		t.Errorf("quantity = %s, want 150", h.Quantity)
	}
	if !h.AvgBuyPrice.Equal(USD(15)) {
		t.Errorf("avg buy price = %s, want $15.00 unchanged", h.AvgBuyPrice)
	}
	if !p.CashBalance().Equal(USD(1000)) {
		t.Errorf("cash = %s, want $1,000.00", p.CashBalance())
	}
}

func TestPortfolio_Sell_Validation(t *testing.T) {
	setup := func(t *testing.T) *Portfolio {
		p := newTestPortfolio(t, 1000)
		mustBuy(t, p, coin("eth", "ETH", 10), 425) // quantity 42.5
		return p
	}

	testCases := []struct {
		name     string
		coin     Coin
		quantity Quantity
		wantErr  error
	}{
		{
			name:     "zero quantity",
			coin:     coin("eth", "ETH", 10),
			quantity: QTY(0),
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "negative quantity",
			coin:     coin("eth", "ETH", 10),
			quantity: QTY(-1),
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "zero price",
			coin:     coin("eth", "ETH", 0),
			quantity: QTY(1),
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "unknown coin",
			coin:     coin("doge", "DOGE", 1),
			quantity: QTY(1),
			wantErr:  ErrNoPosition,
		},
		{
			name:     "oversell is rejected not clamped",
			coin:     coin("eth", "ETH", 10),
			quantity: QTY(42.50000001),
			wantErr:  ErrInsufficientHoldings,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := setup(t)
			cashBefore := p.CashBalance()
			txsBefore := len(p.Transactions())

			_, err := p.Sell(tc.coin, tc.quantity)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Sell() error = %v, want %v", err, tc.wantErr)
			}
			if !p.CashBalance().Equal(cashBefore) {
				t.Errorf("cash changed on failed sell: %s -> %s", cashBefore, p.CashBalance())
			}
			if got := len(p.Transactions()); got != txsBefore {
				t.Errorf("failed sell appended a transaction")
			}
			h, _ := p.Holding("eth")
			if !h.Quantity.Equal(QTY(42.5)) {
				t.Errorf("holding changed on failed sell: %s", h.Quantity)
			}
		})
	}
}

func TestPortfolio_Sell_ExactQuantityClosesHolding(t *testing.T) {
	p := newTestPortfolio(t, 1000)
	eth := coin("eth", "ETH", 10)
	mustBuy(t, p, eth, 425) // quantity 42.5

	mustSell(t, p, eth, QTY(42.5))

	h, ok := p.Holding("eth")
	if !ok {
		t.Fatal("holding record should be retained as an inert record")
	}
	if !h.Quantity.IsZero() {
		t.Errorf("quantity = %s, want 0", h.Quantity)
	}
	if h.Open() {
		t.Error("closed holding still reports Open()")
	}

	// A closed position cannot be sold again.
	if _, err := p.Sell(eth, QTY(1)); !errors.Is(err, ErrNoPosition) {
		t.Errorf("sell of closed position: error = %v, want %v", err, ErrNoPosition)
	}
}

func TestPortfolio_Buy_ExactBalanceSpend(t *testing.T) {
	p := newTestPortfolio(t, 1000)
	btc := coin("bitcoin", "BTC", 50000)

	mustBuy(t, p, btc, 1000)
	if !p.CashBalance().IsZero() {
		t.Fatalf("cash = %s, want $0.00", p.CashBalance())
	}

	// Any further buy fails with insufficient funds.
	if _, err := p.Buy(btc, USD(0.01)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("buy on empty balance: error = %v, want %v", err, ErrInsufficientFunds)
	}
}

func TestPortfolio_ReopenedHoldingTakesFreshBasis(t *testing.T) {
	p := newTestPortfolio(t, 1000)

	mustBuy(t, p, coin("eth", "ETH", 10), 100) // 10 units at 10
	mustSell(t, p, coin("eth", "ETH", 10), QTY(10))

	// The position is closed; the next buy must not blend with the stale
	// average.
	mustBuy(t, p, coin("eth", "ETH", 40), 400) // 10 units at 40

	h, _ := p.Holding("eth")
	if !h.Quantity.Equal(QTY(10)) {
		t.Errorf("quantity = %s, want 10", h.Quantity)
	}
	if !h.AvgBuyPrice.Equal(USD(40)) {
		t.Errorf("avg buy price = %s, want $40.00", h.AvgBuyPrice)
	}
}

func TestPortfolio_CashConservation(t *testing.T) {
	// cashBalance == startingBalance - Σ(buy total) + Σ(sell total)
	p := newTestPortfolio(t, 1000)

	mustBuy(t, p, coin("bitcoin", "BTC", 43000), 350)
	mustBuy(t, p, coin("eth", "ETH", 2200), 275.25)
	mustSell(t, p, coin("bitcoin", "BTC", 47500), QTY(0.003))
	mustBuy(t, p, coin("pepe", "PEPE", 0.00001842), 120)

	var buys, sells Money
	for _, tx := range p.Transactions() {
		switch tx.Side {
		case SideBuy:
			buys = buys.Add(tx.TotalValue)
		case SideSell:
			sells = sells.Add(tx.TotalValue)
		}
	}
	want := USD(1000).Sub(buys).Add(sells)
	if !p.CashBalance().Equal(want) {
		t.Errorf("cash = %s, want %s", p.CashBalance(), want)
	}
	if p.CashBalance().IsNegative() {
		t.Error("cash went negative")
	}
}

func TestPortfolio_PepeScenario(t *testing.T) {
	p := newTestPortfolio(t, 1000)

	// Buy 300 worth at 0.00001842.
	tx1 := mustBuy(t, p, coin("pepe", "PEPE", 0.00001842), 300)
	if !p.CashBalance().Equal(USD(700)) {
		t.Fatalf("cash after first buy = %s, want $700.00", p.CashBalance())
	}
	if !tx1.Quantity.Equal(USD(300).DivPrice(USD(0.00001842))) {
		t.Errorf("quantity = %s, want 300/0.00001842", tx1.Quantity)
	}

	// Buy another 300 worth at 0.00002.
	mustBuy(t, p, coin("pepe", "PEPE", 0.00002), 300)
	if !p.CashBalance().Equal(USD(400)) {
		t.Fatalf("cash after second buy = %s, want $400.00", p.CashBalance())
	}
	h, _ := p.Holding("pepe")
	if !h.AvgBuyPrice.GreaterThan(USD(0.00001842)) || !h.AvgBuyPrice.LessThan(USD(0.00002)) {
		t.Errorf("avg buy price %s not between 0.00001842 and 0.00002", h.AvgBuyPrice)
	}

	// Sell half the position at 0.00002.
	half := h.Quantity.Half()
	avgBefore := h.AvgBuyPrice
	cashBefore := p.CashBalance()
	tx3 := mustSell(t, p, coin("pepe", "PEPE", 0.00002), half)

	wantProceeds := USD(0.00002).Mul(half)
	if !tx3.TotalValue.Equal(wantProceeds) {
		t.Errorf("proceeds = %s, want %s", tx3.TotalValue, wantProceeds)
	}
	if !p.CashBalance().Equal(cashBefore.Add(wantProceeds)) {
		t.Errorf("cash = %s, want %s", p.CashBalance(), cashBefore.Add(wantProceeds))
	}
	h, _ = p.Holding("pepe")
	if !h.AvgBuyPrice.Equal(avgBefore) {
		t.Errorf("avg buy price changed on sell: %s -> %s", avgBefore, h.AvgBuyPrice)
	}
	if !h.Quantity.Equal(half) {
		t.Errorf("quantity = %s, want %s", h.Quantity, half)
	}
}

func TestPortfolio_ReplayReproducesState(t *testing.T) {
	p := newTestPortfolio(t, 1000)
	mustBuy(t, p, coin("bitcoin", "BTC", 43000), 350)
	mustBuy(t, p, coin("eth", "ETH", 2200), 275.25)
	mustSell(t, p, coin("bitcoin", "BTC", 47500), QTY(0.003))
	mustBuy(t, p, coin("eth", "ETH", 2100), 100)
	// A failed operation must leave no trace in the log.
	if _, err := p.Buy(coin("bitcoin", "BTC", 43000), USD(1e9)); err == nil {
		t.Fatal("expected buy to fail")
	}

	replayed, err := Replay(p.UserID(), p.StartingBalance(), p.Transactions())
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}
	if !replayed.CashBalance().Equal(p.CashBalance()) {
		t.Errorf("replayed cash = %s, want %s", replayed.CashBalance(), p.CashBalance())
	}
	for _, h := range p.Holdings() {
		r, ok := replayed.Holding(h.CoinID)
		if !ok {
			t.Fatalf("replay lost holding %s", h.CoinID)
		}
		if !r.Quantity.Equal(h.Quantity) {
			t.Errorf("replayed %s quantity = %s, want %s", h.CoinID, r.Quantity, h.Quantity)
		}
		if !r.AvgBuyPrice.Equal(h.AvgBuyPrice) {
			t.Errorf("replayed %s avg price = %s, want %s", h.CoinID, r.AvgBuyPrice, h.AvgBuyPrice)
		}
	}

	if err := p.Audit(); err != nil {
		t.Errorf("Audit() failed: %v", err)
	}
}

func TestNewPortfolio_RejectsNegativeBalance(t *testing.T) {
	if _, err := NewPortfolio("tester", USD(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("error = %v, want %v", err, ErrInvalidAmount)
	}
}
