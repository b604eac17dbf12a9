package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/dexarb/internal/arbitrage"
	"github.com/alanyoungcy/dexarb/internal/chain"
	"github.com/alanyoungcy/dexarb/internal/config"
	"github.com/alanyoungcy/dexarb/internal/dex"
	"github.com/alanyoungcy/dexarb/internal/domain"
	"github.com/alanyoungcy/dexarb/internal/notify"
)

const (
	// errorBackoff is the fixed delay after a failed cycle. Constant rather
	// than exponential so recovery time stays bounded and predictable.
	errorBackoff = 30 * time.Second

	// maintenanceEvery is the cycle count between maintenance passes.
	maintenanceEvery = 100

	// arbGasLimit approximates the gas used by a two-leg arbitrage trade.
	arbGasLimit = 200_000
)

// nativeTokenUSD is the assumed USD price of the chain's native token when
// converting gas costs. A fixed heuristic; a price oracle is deliberately out
// of scope.
var nativeTokenUSD = decimal.NewFromInt(2000)

// Orchestrator drives the monitoring loop: every tick it fetches quotes for
// each monitored pair, runs detection, persists and fans out the results, and
// every maintenanceEvery cycles performs retention and gas upkeep. Control
// state is polled from the scheduler at each cycle boundary, so commands
// never interrupt in-flight work.
type Orchestrator struct {
	cfg        config.Config
	chain      *chain.Client
	manager    *dex.Manager
	detector   *arbitrage.Detector
	calculator *arbitrage.Calculator
	analyzer   *arbitrage.Analyzer
	metrics    *Metrics
	scheduler  *Scheduler

	opps   domain.OpportunityStore
	quotes domain.QuoteStore

	// Optional collaborators; any of these may be nil.
	quoteCache domain.QuoteCache
	archiver   domain.Archiver
	notifier   *notify.Notifier

	logger *slog.Logger
}

// OrchestratorDeps bundles the orchestrator's collaborators.
type OrchestratorDeps struct {
	Chain      *chain.Client
	Manager    *dex.Manager
	Detector   *arbitrage.Detector
	Calculator *arbitrage.Calculator
	Analyzer   *arbitrage.Analyzer
	Metrics    *Metrics
	Scheduler  *Scheduler
	Opps       domain.OpportunityStore
	Quotes     domain.QuoteStore
	QuoteCache domain.QuoteCache
	Archiver   domain.Archiver
	Notifier   *notify.Notifier
}

// NewOrchestrator wires an orchestrator. It installs the metrics as the dex
// manager's quote observer and registers the stats provider on the scheduler.
func NewOrchestrator(cfg config.Config, deps OrchestratorDeps, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		cfg:        cfg,
		chain:      deps.Chain,
		manager:    deps.Manager,
		detector:   deps.Detector,
		calculator: deps.Calculator,
		analyzer:   deps.Analyzer,
		metrics:    deps.Metrics,
		scheduler:  deps.Scheduler,
		opps:       deps.Opps,
		quotes:     deps.Quotes,
		quoteCache: deps.QuoteCache,
		archiver:   deps.Archiver,
		notifier:   deps.Notifier,
		logger:     logger.With(slog.String("component", "orchestrator")),
	}
	o.manager.SetObserver(o.metrics)
	o.scheduler.SetStatsFunc(o.metrics.Report)
	return o
}

// MonitoredPairs returns the fixed set of pairs built from the configured
// token addresses.
func (o *Orchestrator) MonitoredPairs() []domain.TokenPair {
	t := o.cfg.Tokens
	return []domain.TokenPair{
		{Token0: t.WETH, Token1: t.USDC, Token0Symbol: "WETH", Token1Symbol: "USDC"},
		{Token0: t.WBTC, Token1: t.USDC, Token0Symbol: "WBTC", Token1Symbol: "USDC"},
		{Token0: t.WETH, Token1: t.WBTC, Token0Symbol: "WETH", Token1Symbol: "WBTC"},
	}
}

// Run executes the monitoring loop until ctx is cancelled or the scheduler
// reaches Stopped after having run. Initial health checks are fatal; cycle
// errors are not.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.healthChecks(ctx); err != nil {
		return err
	}

	interval := time.Duration(o.cfg.Arbitrage.CheckIntervalSeconds) * time.Second
	o.logger.Info("starting monitoring loop",
		slog.Duration("interval", interval),
		slog.Int("pairs", len(o.MonitoredPairs())))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var cycle uint64
	started := false

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("monitoring loop cancelled")
			return nil
		case <-ticker.C:
		}

		switch o.scheduler.State() {
		case StatePaused:
			continue
		case StateStopped:
			if started {
				o.logger.Info("monitoring loop stopped")
				return nil
			}
			continue
		}
		started = true

		cycle++
		o.scheduler.MarkActivity()
		o.logger.Debug("starting monitoring cycle", slog.Uint64("cycle", cycle))

		found, cycleProfit, err := o.runCycle(ctx)
		if err != nil {
			o.logger.Error("monitoring cycle failed",
				slog.Uint64("cycle", cycle),
				slog.String("error", err.Error()))
			o.metrics.RecordError(err.Error())
			o.scheduler.Emit(ctx, Event{Type: EventError, Message: err.Error()})
			if o.notifier != nil {
				_ = o.notifier.NotifyError(ctx, err.Error())
			}

			o.logger.Warn("backing off after cycle error",
				slog.Duration("backoff", errorBackoff))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(errorBackoff):
			}
		} else {
			o.metrics.RecordCycle(uint64(found), cycleProfit)
			o.logger.Debug("monitoring cycle completed",
				slog.Uint64("cycle", cycle),
				slog.Int("opportunities", found))
		}

		if cycle%maintenanceEvery == 0 {
			o.performMaintenance(ctx)
		}
	}
}

// runCycle processes every monitored pair. A failure on one pair is logged
// and contributes zero opportunities; it never aborts the other pairs. The
// returned error covers whole-cycle failures only.
func (o *Orchestrator) runCycle(ctx context.Context) (int, decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return 0, decimal.Zero, err
	}

	totalFound := 0
	cycleProfit := decimal.Zero

	for _, pair := range o.MonitoredPairs() {
		opportunities, err := o.processPair(ctx, pair)
		if err != nil {
			o.logger.Warn("failed to process token pair",
				slog.String("pair", pair.Label()),
				slog.String("error", err.Error()))
			continue
		}

		totalFound += len(opportunities)
		for _, opp := range opportunities {
			cycleProfit = cycleProfit.Add(opp.NetProfit)
			if err := o.opps.Insert(ctx, opp); err != nil {
				o.logger.Warn("failed to persist opportunity",
					slog.String("id", opp.ID),
					slog.String("error", err.Error()))
			}
			o.analyzer.AddOpportunity(opp)
		}
	}

	return totalFound, cycleProfit, nil
}

// processPair runs one pair through fetch -> cache -> persist -> detect and
// fans out anything found.
func (o *Orchestrator) processPair(ctx context.Context, pair domain.TokenPair) ([]domain.ArbitrageOpportunity, error) {
	o.logger.Debug("processing token pair", slog.String("pair", pair.Label()))

	quotes, err := o.manager.GetAllPrices(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("bot: fetch prices %s: %w", pair.Label(), err)
	}
	if len(quotes) == 0 {
		o.logger.Warn("no price quotes available", slog.String("pair", pair.Label()))
		return nil, nil
	}

	if o.quoteCache != nil {
		if err := o.quoteCache.SetQuotes(ctx, pair, quotes); err != nil {
			o.logger.Warn("failed to cache quotes",
				slog.String("pair", pair.Label()),
				slog.String("error", err.Error()))
		}
	}
	for _, quote := range quotes {
		if err := o.quotes.Insert(ctx, quote); err != nil {
			o.logger.Warn("failed to persist quote",
				slog.String("dex", quote.DexName),
				slog.String("error", err.Error()))
		}
	}

	ttl := time.Duration(o.cfg.Redis.CacheTTLSeconds) * time.Second
	valid := dex.FilterValidQuotes(quotes, ttl, o.logger)

	opportunities := o.detector.DetectOpportunities(valid)
	if len(opportunities) == 0 {
		return nil, nil
	}

	spread := 0.0
	if s, ok := dex.PriceSpread(valid); ok {
		// Pair metrics track the fractional spread.
		spread, _ = s.Div(decimal.NewFromInt(100)).Float64()
	}

	totalProfit := decimal.Zero
	for _, opp := range opportunities {
		totalProfit = totalProfit.Add(opp.NetProfit)
		realistic := o.calculator.RealisticProfit(opp)
		o.logger.Info("arbitrage opportunity",
			slog.String("pair", opp.Pair.Label()),
			slog.String("buy_dex", opp.BuyDex),
			slog.String("buy_price", opp.BuyPrice.String()),
			slog.String("sell_dex", opp.SellDex),
			slog.String("sell_price", opp.SellPrice.String()),
			slog.String("net_profit", opp.NetProfit.String()),
			slog.String("realistic_profit", realistic.String()))

		o.metrics.RecordPairOpportunity(opp.Pair.Label(), opp.NetProfit, spread)
		if o.notifier != nil {
			_ = o.notifier.NotifyOpportunity(ctx, opp)
		}
	}

	o.scheduler.Emit(ctx, Event{
		Type:        EventOpportunityFound,
		Message:     pair.Label(),
		Count:       len(opportunities),
		TotalProfit: totalProfit.String(),
	})

	return opportunities, nil
}

// healthChecks verifies the chain, venues, and storage before the first
// cycle.
func (o *Orchestrator) healthChecks(ctx context.Context) error {
	o.logger.Info("performing health checks")

	if err := o.chain.HealthCheck(ctx); err != nil {
		return fmt.Errorf("bot: chain health check: %w", err)
	}
	if o.manager.ClientCount() == 0 {
		return fmt.Errorf("bot: no dex clients available")
	}
	if err := o.manager.HealthCheck(ctx); err != nil {
		return fmt.Errorf("bot: dex health check: %w", err)
	}

	o.logger.Info("all health checks passed")
	return nil
}

// performMaintenance archives and prunes aged records, logs a market
// analysis snapshot, and refreshes the detector's gas cost estimate.
// Maintenance failures are logged, never fatal.
func (o *Orchestrator) performMaintenance(ctx context.Context) {
	o.logger.Info("performing periodic maintenance")

	cutoff := time.Now().UTC().AddDate(0, 0, -o.cfg.Database.RetentionDays)

	if o.archiver != nil {
		if n, err := o.archiver.ArchiveOpportunities(ctx, cutoff); err != nil {
			o.logger.Warn("failed to archive opportunities", slog.String("error", err.Error()))
		} else if n > 0 {
			o.logger.Info("archived opportunities", slog.Int64("count", n))
		}
		if n, err := o.archiver.ArchiveQuotes(ctx, cutoff); err != nil {
			o.logger.Warn("failed to archive quotes", slog.String("error", err.Error()))
		} else if n > 0 {
			o.logger.Info("archived quotes", slog.Int64("count", n))
		}
	}

	if n, err := o.opps.DeleteBefore(ctx, cutoff); err != nil {
		o.logger.Warn("failed to prune opportunities", slog.String("error", err.Error()))
	} else if n > 0 {
		o.logger.Info("pruned old opportunities", slog.Int64("count", n))
	}
	if n, err := o.quotes.DeleteBefore(ctx, cutoff); err != nil {
		o.logger.Warn("failed to prune quotes", slog.String("error", err.Error()))
	} else if n > 0 {
		o.logger.Info("pruned old quotes", slog.Int64("count", n))
	}

	analysis := o.analyzer.GenerateMarketAnalysis()
	o.logger.Info("market analysis",
		slog.Uint64("total_opportunities", analysis.TotalOpportunitiesFound),
		slog.String("avg_profit", analysis.AverageProfitPerOpportunity.String()),
		slog.Float64("efficiency", analysis.MarketEfficiencyScore))

	o.refreshGasEstimate(ctx)
}

// refreshGasEstimate recomputes the per-trade gas cost from the current
// network gas price and pushes it into the detector.
func (o *Orchestrator) refreshGasEstimate(ctx context.Context) {
	costWei, err := o.chain.EstimateGasCost(ctx, arbGasLimit)
	if err != nil {
		o.logger.Warn("failed to refresh gas cost estimate",
			slog.String("error", err.Error()))
		return
	}

	costUSD := chain.GasCostUSD(costWei, nativeTokenUSD)
	o.detector.UpdateGasCostEstimate(costUSD)
	o.logger.Debug("gas cost estimate refreshed", slog.String("usd", costUSD.String()))
}

// Stats describes the bot's current condition for the status API.
type Stats struct {
	State                   string          `json:"state"`
	TotalOpportunitiesFound uint64          `json:"total_opportunities_found"`
	AverageProfit           decimal.Decimal `json:"average_profit"`
	MarketEfficiencyScore   float64         `json:"market_efficiency_score"`
	DexClientCount          int             `json:"dex_client_count"`
}

// GetStats snapshots the analyzer and scheduler into a Stats value.
func (o *Orchestrator) GetStats() Stats {
	analysis := o.analyzer.GenerateMarketAnalysis()
	return Stats{
		State:                   o.scheduler.State().String(),
		TotalOpportunitiesFound: analysis.TotalOpportunitiesFound,
		AverageProfit:           analysis.AverageProfitPerOpportunity,
		MarketEfficiencyScore:   analysis.MarketEfficiencyScore,
		DexClientCount:          o.manager.ClientCount(),
	}
}
