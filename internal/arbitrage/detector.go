// Package arbitrage implements the opportunity-detection and profit-analysis
// engine: pairwise quote comparison, fee/slippage-adjusted profit math, and
// rolling historical analytics. Nothing in this package performs I/O; it
// consumes quote batches and produces opportunity records.
package arbitrage

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/dexarb/internal/config"
	"github.com/alanyoungcy/dexarb/internal/domain"
)

// Detector compares every pair of quotes in a batch and keeps the
// orientations whose net profit clears the configured threshold.
type Detector struct {
	minProfitThreshold decimal.Decimal
	tradeAmount        decimal.Decimal
	gasCostEstimate    decimal.Decimal
	logger             *slog.Logger
}

// NewDetector parses the three decimal parameters from the arbitrage config.
// A malformed decimal string is a fatal construction error; the detector is
// never built with partially valid numbers.
func NewDetector(cfg config.ArbitrageConfig, logger *slog.Logger) (*Detector, error) {
	threshold, err := decimal.NewFromString(cfg.MinProfitThreshold)
	if err != nil {
		return nil, fmt.Errorf("arbitrage: %w: min_profit_threshold %q: %v", domain.ErrInvalidConfig, cfg.MinProfitThreshold, err)
	}
	amount, err := decimal.NewFromString(cfg.TradeAmount)
	if err != nil {
		return nil, fmt.Errorf("arbitrage: %w: trade_amount %q: %v", domain.ErrInvalidConfig, cfg.TradeAmount, err)
	}
	gas, err := decimal.NewFromString(cfg.GasCostEstimate)
	if err != nil {
		return nil, fmt.Errorf("arbitrage: %w: gas_cost_estimate %q: %v", domain.ErrInvalidConfig, cfg.GasCostEstimate, err)
	}

	return &Detector{
		minProfitThreshold: threshold,
		tradeAmount:        amount,
		gasCostEstimate:    gas,
		logger:             logger.With(slog.String("component", "detector")),
	}, nil
}

// DetectOpportunities evaluates every unordered pair of quotes in both
// orientations and returns, in construction order, the opportunities whose
// net profit meets the threshold. Fewer than two quotes yields an empty
// result. The scan is deliberately O(n²); batches are bounded by venue count.
func (d *Detector) DetectOpportunities(quotes []domain.PriceQuote) []domain.ArbitrageOpportunity {
	if len(quotes) < 2 {
		return nil
	}

	var candidates []domain.ArbitrageOpportunity
	for i := 0; i < len(quotes); i++ {
		for j := i + 1; j < len(quotes); j++ {
			if opp, ok := d.analyzeQuotePair(quotes[i], quotes[j]); ok {
				candidates = append(candidates, opp)
			}
			if opp, ok := d.analyzeQuotePair(quotes[j], quotes[i]); ok {
				candidates = append(candidates, opp)
			}
		}
	}

	var profitable []domain.ArbitrageOpportunity
	for _, opp := range candidates {
		if opp.NetProfit.GreaterThanOrEqual(d.minProfitThreshold) {
			profitable = append(profitable, opp)
		}
	}

	if len(profitable) > 0 {
		d.logger.Info("profitable opportunities found",
			slog.Int("count", len(profitable)),
			slog.String("pair", quotes[0].Pair.Label()),
		)
	}
	return profitable
}

// analyzeQuotePair evaluates one buy/sell orientation. Mismatched token pairs
// and equal prices are skipped silently; only a strictly positive net profit
// produces a candidate.
func (d *Detector) analyzeQuotePair(buy, sell domain.PriceQuote) (domain.ArbitrageOpportunity, bool) {
	if !buy.Pair.Matches(sell.Pair) {
		return domain.ArbitrageOpportunity{}, false
	}
	if sell.Price.LessThanOrEqual(buy.Price) {
		return domain.ArbitrageOpportunity{}, false
	}

	opp := domain.NewOpportunity(
		buy.Pair,
		buy.DexName, sell.DexName,
		buy.Price, sell.Price,
		d.tradeAmount, d.gasCostEstimate,
	)

	if !opp.NetProfit.IsPositive() {
		d.logger.Debug("candidate discarded, net profit not positive",
			slog.String("buy_dex", buy.DexName),
			slog.String("sell_dex", sell.DexName),
			slog.String("net_profit", opp.NetProfit.String()),
		)
		return domain.ArbitrageOpportunity{}, false
	}
	return opp, true
}

// MinProfitThreshold returns the parsed per-opportunity profit floor.
func (d *Detector) MinProfitThreshold() decimal.Decimal { return d.minProfitThreshold }

// TradeAmount returns the fixed trade amount used for profit estimation.
func (d *Detector) TradeAmount() decimal.Decimal { return d.tradeAmount }

// GasCostEstimate returns the current per-trade gas cost estimate.
func (d *Detector) GasCostEstimate() decimal.Decimal { return d.gasCostEstimate }

// UpdateGasCostEstimate replaces the gas cost estimate. The orchestrator
// calls this from its maintenance pass when chain gas prices move; the
// detector has a single owner goroutine, so no locking is done here.
func (d *Detector) UpdateGasCostEstimate(gas decimal.Decimal) {
	d.gasCostEstimate = gas
	d.logger.Info("gas cost estimate updated", slog.String("gas_cost", gas.String()))
}
