package bot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Metrics accumulates operational counters across monitoring cycles. All
// methods are safe for concurrent use; the status server reads while the
// orchestrator writes.
type Metrics struct {
	mu      sync.Mutex
	started time.Time
	snap    MetricsSnapshot
}

// MetricsSnapshot is the serializable view of the bot's counters.
type MetricsSnapshot struct {
	UptimeSeconds               uint64                      `json:"uptime_seconds"`
	TotalCyclesCompleted        uint64                      `json:"total_cycles_completed"`
	TotalOpportunitiesFound     uint64                      `json:"total_opportunities_found"`
	TotalProfitSimulated        decimal.Decimal             `json:"total_profit_simulated"`
	AverageProfitPerOpportunity decimal.Decimal             `json:"average_profit_per_opportunity"`
	SuccessRate                 float64                     `json:"success_rate"`
	DexPerformance              map[string]DexMetrics       `json:"dex_performance"`
	TokenPairPerformance        map[string]TokenPairMetrics `json:"token_pair_performance"`
	ErrorCount                  uint64                      `json:"error_count"`
	LastError                   string                      `json:"last_error,omitempty"`
	LastUpdated                 time.Time                   `json:"last_updated"`
}

// DexMetrics tracks quote fetch outcomes for one venue.
type DexMetrics struct {
	Name                  string  `json:"name"`
	TotalQuotesFetched    uint64  `json:"total_quotes_fetched"`
	SuccessfulQuotes      uint64  `json:"successful_quotes"`
	FailedQuotes          uint64  `json:"failed_quotes"`
	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
}

// TokenPairMetrics aggregates opportunity outcomes for one pair label.
type TokenPairMetrics struct {
	Pair                  string          `json:"pair"`
	TotalOpportunities    uint64          `json:"total_opportunities"`
	TotalProfit           decimal.Decimal `json:"total_profit"`
	AverageProfit         decimal.Decimal `json:"average_profit"`
	BestProfit            decimal.Decimal `json:"best_profit"`
	AveragePriceSpread    float64         `json:"average_price_spread"`
	MarketEfficiencyScore float64         `json:"market_efficiency_score"`
}

// NewMetrics creates an empty Metrics starting the uptime clock now.
func NewMetrics() *Metrics {
	return &Metrics{
		started: time.Now(),
		snap: MetricsSnapshot{
			DexPerformance:       make(map[string]DexMetrics),
			TokenPairPerformance: make(map[string]TokenPairMetrics),
			LastUpdated:          time.Now().UTC(),
		},
	}
}

// RecordCycle records a completed monitoring cycle and its yield.
func (m *Metrics) RecordCycle(opportunitiesFound uint64, cycleProfit decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.TotalCyclesCompleted++
	m.snap.TotalOpportunitiesFound += opportunitiesFound
	m.snap.TotalProfitSimulated = m.snap.TotalProfitSimulated.Add(cycleProfit)

	if m.snap.TotalOpportunitiesFound > 0 {
		m.snap.AverageProfitPerOpportunity = m.snap.TotalProfitSimulated.
			Div(decimal.NewFromUint64(m.snap.TotalOpportunitiesFound))
	}
	m.touch()
}

// ObserveQuote records one venue quote attempt. Implements dex.QuoteObserver.
func (m *Metrics) ObserveQuote(dexName string, success bool, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dm := m.snap.DexPerformance[dexName]
	dm.Name = dexName
	dm.TotalQuotesFetched++
	if success {
		dm.SuccessfulQuotes++
	} else {
		dm.FailedQuotes++
	}

	// Running mean over all fetches, successful or not.
	responseMs := float64(elapsed.Microseconds()) / 1000.0
	totalTime := dm.AverageResponseTimeMs * float64(dm.TotalQuotesFetched-1)
	dm.AverageResponseTimeMs = (totalTime + responseMs) / float64(dm.TotalQuotesFetched)

	m.snap.DexPerformance[dexName] = dm
	m.touch()
}

// RecordPairOpportunity records an accepted opportunity against its pair
// label. priceSpread is the fractional spread of the quote batch that
// produced it.
func (m *Metrics) RecordPairOpportunity(pair string, profit decimal.Decimal, priceSpread float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pm, ok := m.snap.TokenPairPerformance[pair]
	if !ok {
		pm = TokenPairMetrics{Pair: pair}
	}

	pm.TotalOpportunities++
	pm.TotalProfit = pm.TotalProfit.Add(profit)
	pm.AverageProfit = pm.TotalProfit.Div(decimal.NewFromUint64(pm.TotalOpportunities))
	if profit.GreaterThan(pm.BestProfit) {
		pm.BestProfit = profit
	}

	totalSpread := pm.AveragePriceSpread * float64(pm.TotalOpportunities-1)
	pm.AveragePriceSpread = (totalSpread + priceSpread) / float64(pm.TotalOpportunities)

	// Efficiency is the inverse of the average spread: tight spreads score
	// close to 1, wide spreads toward 0.
	if pm.AveragePriceSpread > 0 {
		pm.MarketEfficiencyScore = 1.0 / (1.0 + pm.AveragePriceSpread)
	} else {
		pm.MarketEfficiencyScore = 1.0
	}

	m.snap.TokenPairPerformance[pair] = pm
	m.touch()
}

// RecordError counts a cycle-level failure and remembers its message.
func (m *Metrics) RecordError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.ErrorCount++
	m.snap.LastError = message
	m.touch()
}

// Snapshot returns a deep copy of the current counters with uptime and
// success rate computed.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Metrics) snapshotLocked() MetricsSnapshot {
	out := m.snap
	out.UptimeSeconds = uint64(time.Since(m.started).Seconds())

	if m.snap.TotalCyclesCompleted > 0 {
		successful := m.snap.TotalCyclesCompleted
		if m.snap.ErrorCount < successful {
			successful -= m.snap.ErrorCount
		} else {
			successful = 0
		}
		out.SuccessRate = float64(successful) / float64(m.snap.TotalCyclesCompleted)
	}

	out.DexPerformance = make(map[string]DexMetrics, len(m.snap.DexPerformance))
	for k, v := range m.snap.DexPerformance {
		out.DexPerformance[k] = v
	}
	out.TokenPairPerformance = make(map[string]TokenPairMetrics, len(m.snap.TokenPairPerformance))
	for k, v := range m.snap.TokenPairPerformance {
		out.TokenPairPerformance[k] = v
	}
	return out
}

// Report renders a human-readable metrics summary for stats commands and
// operator notifications.
func (m *Metrics) Report() string {
	snap := m.Snapshot()

	var b strings.Builder
	b.WriteString("=== Arbitrage Bot Metrics Report ===\n")
	fmt.Fprintf(&b, "Uptime: %d seconds\n", snap.UptimeSeconds)
	fmt.Fprintf(&b, "Total Cycles: %d\n", snap.TotalCyclesCompleted)
	fmt.Fprintf(&b, "Opportunities Found: %d\n", snap.TotalOpportunitiesFound)
	fmt.Fprintf(&b, "Total Simulated Profit: %s USDC\n", snap.TotalProfitSimulated.StringFixed(2))
	fmt.Fprintf(&b, "Average Profit per Opportunity: %s USDC\n", snap.AverageProfitPerOpportunity.StringFixed(2))
	fmt.Fprintf(&b, "Success Rate: %.2f%%\n", snap.SuccessRate*100)
	fmt.Fprintf(&b, "Error Count: %d\n", snap.ErrorCount)
	if snap.LastError != "" {
		fmt.Fprintf(&b, "Last Error: %s\n", snap.LastError)
	}

	b.WriteString("\n=== DEX Performance ===\n")
	for _, name := range sortedKeys(snap.DexPerformance) {
		dm := snap.DexPerformance[name]
		rate := 0.0
		if dm.TotalQuotesFetched > 0 {
			rate = float64(dm.SuccessfulQuotes) / float64(dm.TotalQuotesFetched) * 100
		}
		fmt.Fprintf(&b, "%s: %d/%d successful quotes (%.1f%% success rate), avg response: %.1fms\n",
			name, dm.SuccessfulQuotes, dm.TotalQuotesFetched, rate, dm.AverageResponseTimeMs)
	}

	b.WriteString("\n=== Token Pair Performance ===\n")
	for _, pair := range sortedKeys(snap.TokenPairPerformance) {
		pm := snap.TokenPairPerformance[pair]
		fmt.Fprintf(&b, "%s: %d opportunities, %s USDC total profit, %.2f%% avg spread\n",
			pair, pm.TotalOpportunities, pm.TotalProfit.StringFixed(2), pm.AveragePriceSpread*100)
	}

	fmt.Fprintf(&b, "\nLast Updated: %s\n", snap.LastUpdated.Format(time.RFC3339))
	return b.String()
}

// ExportJSON renders the snapshot as indented JSON.
func (m *Metrics) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bot: marshal metrics: %w", err)
	}
	return data, nil
}

// Reset clears every counter and restarts the uptime clock.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = time.Now()
	m.snap = MetricsSnapshot{
		DexPerformance:       make(map[string]DexMetrics),
		TokenPairPerformance: make(map[string]TokenPairMetrics),
		LastUpdated:          time.Now().UTC(),
	}
}

func (m *Metrics) touch() {
	m.snap.LastUpdated = time.Now().UTC()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
