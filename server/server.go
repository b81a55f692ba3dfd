// Package server exposes the trading simulator over HTTP.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	coinflip "github.com/avi-xyz/CoinFlip-sub001"
	"github.com/avi-xyz/CoinFlip-sub001/internal/analytics"
)

// Config holds server wiring.
type Config struct {
	Addr           string
	Log            zerolog.Logger
	Portfolio      *coinflip.Portfolio
	Prices         coinflip.PriceLookup
	PricesUpdated  func() time.Time
	Coins          []coinflip.Coin
	LedgerFile     string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server serves the portfolio API.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	mu        sync.RWMutex
	portfolio *coinflip.Portfolio

	prices        coinflip.PriceLookup
	pricesUpdated func() time.Time
	coins         map[string]coinflip.Coin
	ledgerFile    string

	validate *validator.Validate
	recorder *analytics.Recorder
}

// New creates an HTTP server around a portfolio.
func New(cfg Config) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		log:           cfg.Log.With().Str("component", "server").Logger(),
		portfolio:     cfg.Portfolio,
		prices:        cfg.Prices,
		pricesUpdated: cfg.PricesUpdated,
		coins:         make(map[string]coinflip.Coin, len(cfg.Coins)),
		ledgerFile:    cfg.LedgerFile,
		validate:      validator.New(),
		recorder:      analytics.NewRecorder(0),
	}
	if s.prices == nil {
		s.prices = coinflip.NoPrices
	}
	if s.pricesUpdated == nil {
		s.pricesUpdated = func() time.Time { return time.Time{} }
	}
	for _, c := range cfg.Coins {
		s.coins[c.ID] = c
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(cfg Config) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Use(s.rateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", s.handlePortfolio)
			r.Get("/holdings", s.handleHoldings)
			r.Get("/transactions", s.handleTransactions)
			r.Post("/reset", s.handleReset)
		})
		r.Route("/trade", func(r chi.Router) {
			r.Post("/buy", s.handleBuy)
			r.Post("/sell", s.handleSell)
		})
		r.Get("/analytics/rate-limits", s.handleRateLimitStats)
	})
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the HTTP server and blocks.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// current returns the live portfolio; reset swaps it wholesale.
func (s *Server) current() *coinflip.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.portfolio
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
