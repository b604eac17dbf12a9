// Package dex contains the venue adapters that produce price quotes for the
// detector, plus batch helpers for filtering and summarizing quote sets. The
// detector itself never sees these types; it consumes plain quote batches.
package dex

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/dexarb/internal/chain"
	"github.com/alanyoungcy/dexarb/internal/config"
	"github.com/alanyoungcy/dexarb/internal/domain"
)

// Client is the capability a venue adapter must provide. Implementations are
// one per venue and must be safe for concurrent use.
type Client interface {
	// Name returns the venue's display name as it appears in quotes.
	Name() string

	// GetPrice returns the venue's current quote for the pair.
	GetPrice(ctx context.Context, pair domain.TokenPair) (domain.PriceQuote, error)

	// GetLiquidity returns the venue's pool liquidity for the pair, when the
	// venue can report one. An invalid NullDecimal means unknown, not zero.
	GetLiquidity(ctx context.Context, pair domain.TokenPair) (decimal.NullDecimal, error)

	// HealthCheck verifies the venue's contracts are reachable.
	HealthCheck(ctx context.Context) error
}

// QuoteObserver receives the outcome of every venue quote attempt. Used by
// the bot metrics to track per-venue success rates and response times.
type QuoteObserver interface {
	ObserveQuote(dexName string, success bool, elapsed time.Duration)
}

// Manager fans a price request over every registered venue. A venue that
// fails to quote is logged and skipped; the cycle proceeds with whatever
// quotes were obtained.
type Manager struct {
	clients  []Client
	observer QuoteObserver
	logger   *slog.Logger
}

// NewManager creates a Manager over the given clients.
func NewManager(clients []Client, logger *slog.Logger) *Manager {
	return &Manager{
		clients: clients,
		logger:  logger.With(slog.String("component", "dex_manager")),
	}
}

// SetObserver installs a quote observer. Must be called before the first
// GetAllPrices call; the observer is not guarded by a lock.
func (m *Manager) SetObserver(obs QuoteObserver) {
	m.observer = obs
}

// GetAllPrices collects one quote per responsive venue for the pair.
func (m *Manager) GetAllPrices(ctx context.Context, pair domain.TokenPair) ([]domain.PriceQuote, error) {
	var quotes []domain.PriceQuote
	for _, client := range m.clients {
		started := time.Now()
		quote, err := client.GetPrice(ctx, pair)
		if m.observer != nil {
			m.observer.ObserveQuote(client.Name(), err == nil, time.Since(started))
		}
		if err != nil {
			m.logger.WarnContext(ctx, "failed to get price",
				slog.String("dex", client.Name()),
				slog.String("pair", pair.Label()),
				slog.String("error", err.Error()),
			)
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// ClientCount returns the number of registered venues.
func (m *Manager) ClientCount() int {
	return len(m.clients)
}

// HealthCheck runs every venue's health check and returns the first failure.
func (m *Manager) HealthCheck(ctx context.Context) error {
	for _, client := range m.clients {
		if err := client.HealthCheck(ctx); err != nil {
			return fmt.Errorf("dex: %s health check: %w", client.Name(), err)
		}
	}
	return nil
}

// NewClients builds the venue adapters from configuration. Unknown venue keys
// are logged and skipped rather than failing startup.
func NewClients(chainClient *chain.Client, dexes map[string]config.DexConfig, logger *slog.Logger) ([]Client, error) {
	var clients []Client
	for key, cfg := range dexes {
		switch key {
		case "uniswap":
			c, err := NewUniswapV3(chainClient, cfg, logger)
			if err != nil {
				return nil, fmt.Errorf("dex: uniswap: %w", err)
			}
			clients = append(clients, c)
		case "quickswap":
			c, err := NewQuickSwap(chainClient, cfg, logger)
			if err != nil {
				return nil, fmt.Errorf("dex: quickswap: %w", err)
			}
			clients = append(clients, c)
		default:
			logger.Warn("unknown dex configuration, skipping", slog.String("key", key))
		}
	}
	return clients, nil
}
