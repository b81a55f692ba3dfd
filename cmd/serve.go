package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	coinflip "github.com/avi-xyz/CoinFlip-sub001"
	"github.com/avi-xyz/CoinFlip-sub001/coingecko"
	"github.com/avi-xyz/CoinFlip-sub001/internal/config"
	"github.com/avi-xyz/CoinFlip-sub001/server"
)

type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the trading simulator HTTP API" }
func (*serveCmd) Usage() string {
	return `cfs serve

  Runs the HTTP API. Configuration comes from the environment and an
  optional .env file (CFS_LISTEN_ADDR, CFS_COINS, CFS_LEDGER_FILE, ...).
  Prices refresh from CoinGecko in the background; the ledger is saved
  after every trade.
`
}

func (p *serveCmd) SetFlags(f *flag.FlagSet) {}

func (p *serveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	portfolio, err := loadServerPortfolio(cfg)
	if err != nil {
		log.Error().Err(err).Msg("cannot load ledger")
		return subcommands.ExitFailure
	}

	book := coingecko.NewPriceBook()
	client := coingecko.NewClient(cfg.Prices.CacheTTL)

	refresh := func() {
		prices, err := client.SimplePrices(cfg.Prices.CoinIDs)
		if err != nil {
			log.Warn().Err(err).Msg("price refresh failed")
			return
		}
		book.Set(prices)
		if cfg.Prices.BookFile != "" {
			if err := coingecko.SavePriceBook(cfg.Prices.BookFile, book); err != nil {
				log.Warn().Err(err).Msg("price book save failed")
			}
		}
		log.Debug().Int("coins", len(prices)).Msg("prices refreshed")
	}
	refresh()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(cfg.Prices.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh()
			}
		}
	}()

	var coins []coinflip.Coin
	for _, id := range cfg.Prices.CoinIDs {
		coins = append(coins, coinflip.NewCoin(id, symbolFor(id), "", coinflip.Money{}))
	}

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		Log:            log,
		Portfolio:      portfolio,
		Prices:         book.Lookup,
		PricesUpdated:  book.UpdatedAt,
		Coins:          coins,
		LedgerFile:     cfg.Portfolio.LedgerFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// loadServerPortfolio loads the configured ledger, creating a fresh
// portfolio when the file does not exist yet.
func loadServerPortfolio(cfg *config.Config) (*coinflip.Portfolio, error) {
	p, err := coinflip.LoadLedger(cfg.Portfolio.LedgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		start, perr := coinflip.ParseMoney(cfg.Portfolio.StartingBalance)
		if perr != nil {
			return nil, fmt.Errorf("invalid CFS_STARTING_BALANCE %q: %w", cfg.Portfolio.StartingBalance, perr)
		}
		return coinflip.NewPortfolio(cfg.Portfolio.UserID, start)
	}
	return p, err
}
