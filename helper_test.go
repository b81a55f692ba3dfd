package coinflip

import "testing"

// USD is a helper for tests to create money from a const.
func USD(v float64) Money { return M(v) }

// QTY is a helper for tests to create a quantity from a const.
func QTY(v float64) Quantity { return Q(v) }

// coin builds a coin reference at a given price.
func coin(id, symbol string, price float64) Coin {
	return NewCoin(id, symbol, "", USD(price))
}

// newTestPortfolio creates a portfolio or fails the test.
func newTestPortfolio(t *testing.T, startingBalance float64) *Portfolio {
	t.Helper()
	p, err := NewPortfolio("tester", USD(startingBalance))
	if err != nil {
		t.Fatalf("NewPortfolio(%v) failed: %v", startingBalance, err)
	}
	return p
}

// mustBuy executes a buy or fails the test.
func mustBuy(t *testing.T, p *Portfolio, c Coin, cash float64) Transaction {
	t.Helper()
	tx, err := p.Buy(c, USD(cash))
	if err != nil {
		t.Fatalf("Buy(%s, %v) failed: %v", c.ID, cash, err)
	}
	return tx
}

// mustSell executes a sell or fails the test.
func mustSell(t *testing.T, p *Portfolio, c Coin, quantity Quantity) Transaction {
	t.Helper()
	tx, err := p.Sell(c, quantity)
	if err != nil {
		t.Fatalf("Sell(%s, %s) failed: %v", c.ID, quantity, err)
	}
	return tx
}
