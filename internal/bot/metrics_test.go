package bot

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCycle(t *testing.T) {
	m := NewMetrics()

	m.RecordCycle(2, decimal.NewFromInt(100))
	m.RecordCycle(0, decimal.Zero)
	m.RecordCycle(3, decimal.NewFromInt(50))

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.TotalCyclesCompleted)
	assert.Equal(t, uint64(5), snap.TotalOpportunitiesFound)
	assert.True(t, snap.TotalProfitSimulated.Equal(decimal.NewFromInt(150)))
	assert.True(t, snap.AverageProfitPerOpportunity.Equal(decimal.NewFromInt(30)),
		"got %s", snap.AverageProfitPerOpportunity)
}

func TestObserveQuote(t *testing.T) {
	m := NewMetrics()

	m.ObserveQuote("Uniswap", true, 10*time.Millisecond)
	m.ObserveQuote("Uniswap", true, 30*time.Millisecond)
	m.ObserveQuote("Uniswap", false, 20*time.Millisecond)
	m.ObserveQuote("QuickSwap", true, 5*time.Millisecond)

	snap := m.Snapshot()
	uni := snap.DexPerformance["Uniswap"]
	assert.Equal(t, "Uniswap", uni.Name)
	assert.Equal(t, uint64(3), uni.TotalQuotesFetched)
	assert.Equal(t, uint64(2), uni.SuccessfulQuotes)
	assert.Equal(t, uint64(1), uni.FailedQuotes)
	assert.InDelta(t, 20.0, uni.AverageResponseTimeMs, 1e-9)

	quick := snap.DexPerformance["QuickSwap"]
	assert.Equal(t, uint64(1), quick.TotalQuotesFetched)
	assert.InDelta(t, 5.0, quick.AverageResponseTimeMs, 1e-9)
}

func TestRecordPairOpportunity(t *testing.T) {
	m := NewMetrics()

	m.RecordPairOpportunity("WETH/USDC", decimal.NewFromInt(10), 0.02)
	m.RecordPairOpportunity("WETH/USDC", decimal.NewFromInt(30), 0.04)

	snap := m.Snapshot()
	pm := snap.TokenPairPerformance["WETH/USDC"]
	assert.Equal(t, uint64(2), pm.TotalOpportunities)
	assert.True(t, pm.TotalProfit.Equal(decimal.NewFromInt(40)))
	assert.True(t, pm.AverageProfit.Equal(decimal.NewFromInt(20)))
	assert.True(t, pm.BestProfit.Equal(decimal.NewFromInt(30)))
	assert.InDelta(t, 0.03, pm.AveragePriceSpread, 1e-9)
	assert.InDelta(t, 1.0/1.03, pm.MarketEfficiencyScore, 1e-9)
}

func TestRecordPairOpportunityZeroSpread(t *testing.T) {
	m := NewMetrics()
	m.RecordPairOpportunity("WETH/USDC", decimal.NewFromInt(10), 0)

	pm := m.Snapshot().TokenPairPerformance["WETH/USDC"]
	assert.Equal(t, 1.0, pm.MarketEfficiencyScore)
}

func TestSuccessRate(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 0.0, m.Snapshot().SuccessRate)

	m.RecordCycle(0, decimal.Zero)
	m.RecordCycle(0, decimal.Zero)
	m.RecordCycle(0, decimal.Zero)
	m.RecordCycle(0, decimal.Zero)
	m.RecordError("rpc timeout")

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.ErrorCount)
	assert.Equal(t, "rpc timeout", snap.LastError)
	assert.InDelta(t, 0.75, snap.SuccessRate, 1e-9)
}

func TestSuccessRateFloorsAtZero(t *testing.T) {
	m := NewMetrics()
	m.RecordCycle(0, decimal.Zero)
	m.RecordError("one")
	m.RecordError("two")

	assert.Equal(t, 0.0, m.Snapshot().SuccessRate)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := NewMetrics()
	m.ObserveQuote("Uniswap", true, time.Millisecond)

	snap := m.Snapshot()
	snap.DexPerformance["Uniswap"] = DexMetrics{Name: "mutated"}
	snap.TokenPairPerformance["bogus"] = TokenPairMetrics{}

	fresh := m.Snapshot()
	assert.Equal(t, "Uniswap", fresh.DexPerformance["Uniswap"].Name)
	assert.NotContains(t, fresh.TokenPairPerformance, "bogus")
}

func TestReport(t *testing.T) {
	m := NewMetrics()
	m.RecordCycle(1, decimal.NewFromInt(10))
	m.ObserveQuote("Uniswap", true, 10*time.Millisecond)
	m.RecordPairOpportunity("WETH/USDC", decimal.NewFromInt(10), 0.02)
	m.RecordError("rpc timeout")

	report := m.Report()
	assert.True(t, strings.HasPrefix(report, "=== Arbitrage Bot Metrics Report ==="))
	assert.Contains(t, report, "Total Cycles: 1")
	assert.Contains(t, report, "Opportunities Found: 1")
	assert.Contains(t, report, "Last Error: rpc timeout")
	assert.Contains(t, report, "Uniswap: 1/1 successful quotes")
	assert.Contains(t, report, "WETH/USDC: 1 opportunities")
}

func TestExportJSON(t *testing.T) {
	m := NewMetrics()
	m.RecordCycle(1, decimal.NewFromInt(10))

	data, err := m.ExportJSON()
	require.NoError(t, err)

	var snap MetricsSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, uint64(1), snap.TotalCyclesCompleted)
}

func TestReset(t *testing.T) {
	m := NewMetrics()
	m.RecordCycle(5, decimal.NewFromInt(100))
	m.ObserveQuote("Uniswap", true, time.Millisecond)
	m.RecordError("boom")

	m.Reset()

	snap := m.Snapshot()
	assert.Equal(t, uint64(0), snap.TotalCyclesCompleted)
	assert.Equal(t, uint64(0), snap.ErrorCount)
	assert.Empty(t, snap.LastError)
	assert.Empty(t, snap.DexPerformance)
}
