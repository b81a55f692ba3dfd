package coinflip

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// tradeOp is one random operation attempted against the portfolio.
// Invalid operations are expected to fail; the properties only require
// that failures leave no trace.
type tradeOp struct {
	Sell   bool
	Coin   int
	Amount float64
}

var propCoins = []Coin{
	NewCoin("bitcoin", "BTC", "Bitcoin", M(43250.77)),
	NewCoin("eth", "ETH", "Ethereum", M(2312.04)),
	NewCoin("pepe", "PEPE", "Pepe", M(0.00001842)),
}

func genTradeOps() gopter.Gen {
	opGen := gen.Struct(reflect.TypeOf(tradeOp{}), map[string]gopter.Gen{
		"Sell":   gen.Bool(),
		"Coin":   gen.IntRange(0, len(propCoins)-1),
		"Amount": gen.Float64Range(0.000001, 800),
	})
	return gen.SliceOf(opGen)
}

// runOps applies a sequence of operations, returning the portfolio and
// the sums of successful buy and sell totals.
func runOps(t *testing.T, ops []tradeOp) (p *Portfolio, buys, sells Money) {
	t.Helper()
	p = newTestPortfolio(t, 1000)
	for _, op := range ops {
		c := propCoins[op.Coin]
		if op.Sell {
			// Most sells fail against no or too-small positions, which is the point.
			if tx, err := p.Sell(c, Q(op.Amount)); err == nil {
				sells = sells.Add(tx.TotalValue)
			}
		} else {
			if tx, err := p.Buy(c, M(op.Amount)); err == nil {
				buys = buys.Add(tx.TotalValue)
			}
		}
	}
	return p, buys, sells
}

func TestPortfolio_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("cash is conserved across any operation sequence", prop.ForAll(
		func(ops []tradeOp) bool {
			p, buys, sells := runOps(t, ops)
			want := USD(1000).Sub(buys).Add(sells)
			return p.CashBalance().Equal(want)
		},
		genTradeOps(),
	))

	properties.Property("cash and quantities never go negative", prop.ForAll(
		func(ops []tradeOp) bool {
			p, _, _ := runOps(t, ops)
			if p.CashBalance().IsNegative() {
				return false
			}
			for _, h := range p.Holdings() {
				if h.Quantity.IsNegative() {
					return false
				}
			}
			return true
		},
		genTradeOps(),
	))

	properties.Property("replaying the log reproduces the state", prop.ForAll(
		func(ops []tradeOp) bool {
			p, _, _ := runOps(t, ops)
			return p.Audit() == nil
		},
		genTradeOps(),
	))

	properties.TestingRun(t)
}
