package bot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/dexarb/internal/arbitrage"
	"github.com/alanyoungcy/dexarb/internal/config"
	"github.com/alanyoungcy/dexarb/internal/dex"
	"github.com/alanyoungcy/dexarb/internal/domain"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	cfg := config.Defaults()
	logger := testLogger()

	detector, err := arbitrage.NewDetector(cfg.Arbitrage, logger)
	require.NoError(t, err)

	return NewOrchestrator(cfg, OrchestratorDeps{
		Manager:    dex.NewManager(nil, logger),
		Detector:   detector,
		Calculator: arbitrage.NewDefaultCalculator(logger),
		Analyzer:   arbitrage.NewAnalyzer(logger),
		Metrics:    NewMetrics(),
		Scheduler:  NewScheduler(nil, logger),
	}, logger)
}

func TestMonitoredPairs(t *testing.T) {
	o := newTestOrchestrator(t)

	pairs := o.MonitoredPairs()
	require.Len(t, pairs, 3)

	labels := make([]string, len(pairs))
	for i, p := range pairs {
		labels[i] = p.Label()
	}
	assert.Equal(t, []string{"WETH/USDC", "WBTC/USDC", "WETH/WBTC"}, labels)

	tokens := config.Defaults().Tokens
	assert.Equal(t, tokens.WETH, pairs[0].Token0)
	assert.Equal(t, tokens.USDC, pairs[0].Token1)
	assert.Equal(t, tokens.WETH, pairs[2].Token0)
	assert.Equal(t, tokens.WBTC, pairs[2].Token1)
}

func TestGetStatsEmpty(t *testing.T) {
	o := newTestOrchestrator(t)

	stats := o.GetStats()
	assert.Equal(t, "stopped", stats.State)
	assert.Equal(t, uint64(0), stats.TotalOpportunitiesFound)
	assert.True(t, stats.AverageProfit.Equal(decimal.Zero))
	assert.Equal(t, 0.9, stats.MarketEfficiencyScore)
	assert.Equal(t, 0, stats.DexClientCount)
}

func TestGetStatsReflectsHistory(t *testing.T) {
	o := newTestOrchestrator(t)

	opp := domain.NewOpportunity(
		domain.TokenPair{Token0Symbol: "WETH", Token1Symbol: "USDC"},
		"Uniswap", "QuickSwap",
		decimal.NewFromInt(2000), decimal.NewFromInt(2010),
		decimal.NewFromInt(1000), decimal.NewFromInt(2),
	)
	o.analyzer.AddOpportunity(opp)

	stats := o.GetStats()
	assert.Equal(t, uint64(1), stats.TotalOpportunitiesFound)
	assert.True(t, stats.AverageProfit.Equal(decimal.NewFromInt(9998)),
		"got %s", stats.AverageProfit)
}

func TestNewOrchestratorInstallsStatsProvider(t *testing.T) {
	o := newTestOrchestrator(t)

	// The metrics report is wired as the scheduler's stats provider.
	require.NotNil(t, o.scheduler.statsFn)
	assert.Contains(t, o.scheduler.statsFn(), "=== Arbitrage Bot Metrics Report ===")
}
