package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	coinflip "github.com/avi-xyz/CoinFlip-sub001"
	"github.com/avi-xyz/CoinFlip-sub001/internal/analytics"
)

// tradeRequest is the body of both trade endpoints. Amount is cash for
// buys and a coin quantity for sells.
type tradeRequest struct {
	CoinID string  `json:"coin_id" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// transactionResponse is the API form of a ledger transaction.
type transactionResponse struct {
	ID           string         `json:"id"`
	Side         string         `json:"side"`
	CoinID       string         `json:"coin_id"`
	CoinSymbol   string         `json:"coin_symbol,omitempty"`
	Quantity     string         `json:"quantity"`
	PricePerCoin coinflip.Money `json:"price_per_coin"`
	TotalValue   coinflip.Money `json:"total_value"`
	Time         time.Time      `json:"time"`
}

func toTransactionResponse(tx coinflip.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		Side:         string(tx.Side),
		CoinID:       tx.CoinID,
		CoinSymbol:   tx.CoinSymbol,
		Quantity:     tx.Quantity.Decimal().String(),
		PricePerCoin: tx.PricePerCoin,
		TotalValue:   tx.TotalValue,
		Time:         tx.Time,
	}
}

// holdingResponse is one open position with its live valuation.
type holdingResponse struct {
	CoinID      string         `json:"coin_id"`
	CoinSymbol  string         `json:"coin_symbol,omitempty"`
	Quantity    string         `json:"quantity"`
	AvgBuyPrice coinflip.Money `json:"avg_buy_price"`
	CostBasis   coinflip.Money `json:"cost_basis"`
	MarketValue coinflip.Money `json:"market_value"`
	Gain        coinflip.Money `json:"unrealized_gain"`
}

// portfolioResponse is the summary view.
type portfolioResponse struct {
	UserID             string            `json:"user_id"`
	StartingBalance    coinflip.Money    `json:"starting_balance"`
	CashBalance        coinflip.Money    `json:"cash_balance"`
	TotalHoldingsValue coinflip.Money    `json:"total_holdings_value"`
	TotalCostBasis     coinflip.Money    `json:"total_cost_basis"`
	UnrealizedGains    coinflip.Money    `json:"unrealized_gains"`
	GainPercent        coinflip.Percent  `json:"gain_percent"`
	NetWorth           coinflip.Money    `json:"net_worth"`
	OpenPositions      int               `json:"open_positions"`
	PricesUpdated      *time.Time        `json:"prices_updated,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	v := coinflip.NewValuation(s.current().Snapshot(), s.prices)
	snap := v.Snapshot()

	resp := portfolioResponse{
		UserID:             snap.UserID,
		StartingBalance:    snap.StartingBalance,
		CashBalance:        snap.CashBalance,
		TotalHoldingsValue: v.TotalHoldingsValue(),
		TotalCostBasis:     v.TotalCostBasis(),
		UnrealizedGains:    v.UnrealizedGains(),
		GainPercent:        v.GainPercent(),
		NetWorth:           v.NetWorth(),
		OpenPositions:      len(v.VisibleHoldings()),
	}
	if t := s.pricesUpdated(); !t.IsZero() {
		resp.PricesUpdated = &t
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	v := coinflip.NewValuation(s.current().Snapshot(), s.prices)

	holdings := v.VisibleHoldings()
	out := make([]holdingResponse, 0, len(holdings))
	for _, h := range holdings {
		value := v.MarketValue(h)
		out = append(out, holdingResponse{
			CoinID:      h.CoinID,
			CoinSymbol:  h.CoinSymbol,
			Quantity:    h.Quantity.Decimal().String(),
			AvgBuyPrice: h.AvgBuyPrice,
			CostBasis:   h.CostBasis(),
			MarketValue: value,
			Gain:        value.Sub(h.CostBasis()),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.current().Transactions()

	// most recent first
	out := make([]transactionResponse, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		out = append(out, toTransactionResponse(txs[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTrade(w, r)
	if !ok {
		return
	}
	c, ok := s.pricedCoin(w, req.CoinID)
	if !ok {
		return
	}

	tx, err := s.current().Buy(c, coinflip.M(req.Amount))
	if err != nil {
		respondTradeError(w, err)
		return
	}
	s.persist()
	s.log.Info().Str("coin", c.ID).Str("total", tx.TotalValue.String()).Msg("buy executed")
	respondJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTrade(w, r)
	if !ok {
		return
	}
	c, ok := s.pricedCoin(w, req.CoinID)
	if !ok {
		return
	}

	tx, err := s.current().Sell(c, coinflip.Q(req.Amount))
	if err != nil {
		respondTradeError(w, err)
		return
	}
	s.persist()
	s.log.Info().Str("coin", c.ID).Str("total", tx.TotalValue.String()).Msg("sell executed")
	respondJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	old := s.current()
	fresh, err := coinflip.NewPortfolio(old.UserID(), old.StartingBalance())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.portfolio = fresh
	s.mu.Unlock()

	s.persist()
	s.log.Info().Str("user", fresh.UserID()).Msg("portfolio reset")
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":      fresh.UserID(),
		"cash_balance": fresh.CashBalance(),
	})
}

func (s *Server) handleRateLimitStats(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
		since = t
	}
	respondJSON(w, http.StatusOK, analytics.Rollup(s.recorder.Events(), since))
}

// decodeTrade parses and validates a trade body. On failure it writes
// the error response and returns ok=false.
func (s *Server) decodeTrade(w http.ResponseWriter, r *http.Request) (tradeRequest, bool) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respondError(w, http.StatusBadRequest, "invalid field "+strings.ToLower(verrs[0].Field()))
			return req, false
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

// pricedCoin resolves a coin ID to a coin carrying its live quote.
func (s *Server) pricedCoin(w http.ResponseWriter, coinID string) (coinflip.Coin, bool) {
	price, ok := s.prices(coinID)
	if !ok || !price.IsPositive() {
		respondError(w, http.StatusNotFound, "no price for coin "+coinID)
		return coinflip.Coin{}, false
	}
	c, ok := s.coins[coinID]
	if !ok {
		c = coinflip.NewCoin(coinID, strings.ToUpper(coinID), "", price)
	} else {
		c.Price = price
	}
	return c, true
}

// persist saves the ledger after a successful mutation. Persistence
// failure is logged, never surfaced: the in-memory ledger is the truth.
func (s *Server) persist() {
	if s.ledgerFile == "" {
		return
	}
	if err := coinflip.SaveLedger(s.ledgerFile, s.current()); err != nil {
		s.log.Error().Err(err).Str("file", s.ledgerFile).Msg("ledger save failed")
	}
}

func respondTradeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coinflip.ErrInsufficientFunds),
		errors.Is(err, coinflip.ErrInsufficientHoldings),
		errors.Is(err, coinflip.ErrNoPosition):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, coinflip.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
