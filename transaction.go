package coinflip

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Side is a typed string identifying the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Transaction is the immutable record of one executed trade. Transactions
// are created only by a successful Buy or Sell, appended to the ledger in
// chronological order, and never mutated or deleted.
//
// TotalValue is fixed at execution time: for a buy it is the exact cash
// debited, for a sell the exact proceeds credited. It is never recomputed
// later against a different price.
type Transaction struct {
	ID           string    // unique identifier
	PortfolioID  string    // owning portfolio's user id
	CoinID       string    // catalog identifier of the traded coin
	CoinSymbol   string    // denormalized for display stability
	Side         Side      // buy or sell
	Quantity     Quantity  // units traded, always positive
	PricePerCoin Money     // execution price per unit
	TotalValue   Money     // cash moved by this trade
	Time         time.Time // execution instant
}

// newTransaction records an executed trade. The id is a fresh uuid.
func newTransaction(side Side, portfolioID string, coin Coin, quantity Quantity, total Money, at time.Time) Transaction {
	return Transaction{
		ID:           uuid.NewString(),
		PortfolioID:  portfolioID,
		CoinID:       coin.ID,
		CoinSymbol:   coin.Symbol,
		Side:         side,
		Quantity:     quantity,
		PricePerCoin: coin.Price,
		TotalValue:   total,
		Time:         at,
	}
}

func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.PortfolioID == o.PortfolioID &&
		t.CoinID == o.CoinID &&
		t.CoinSymbol == o.CoinSymbol &&
		t.Side == o.Side &&
		t.Quantity.Equal(o.Quantity) &&
		t.PricePerCoin.Equal(o.PricePerCoin) &&
		t.TotalValue.Equal(o.TotalValue) &&
		t.Time.Equal(o.Time)
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
// Field order is fixed so persisted ledger lines are stable.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Side)
	w.Append("id", t.ID)
	w.Append("portfolio", t.PortfolioID)
	w.Append("coin", t.CoinID)
	w.Optional("symbol", t.CoinSymbol)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.PricePerCoin)
	w.Append("total", t.TotalValue)
	w.Append("time", t.Time.Format(time.RFC3339Nano))
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		Command  Side     `json:"command"`
		ID       string   `json:"id"`
		Portfolio string  `json:"portfolio"`
		Coin     string   `json:"coin"`
		Symbol   string   `json:"symbol"`
		Quantity Quantity `json:"quantity"`
		Price    Money    `json:"price"`
		Total    Money    `json:"total"`
		Time     string   `json:"time"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	when, err := time.Parse(time.RFC3339Nano, temp.Time)
	if err != nil {
		return err
	}
	t.ID = temp.ID
	t.PortfolioID = temp.Portfolio
	t.CoinID = temp.Coin
	t.CoinSymbol = temp.Symbol
	t.Side = temp.Command
	t.Quantity = temp.Quantity
	t.PricePerCoin = temp.Price
	t.TotalValue = temp.Total
	t.Time = when
	return nil
}
