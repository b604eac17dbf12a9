package arbitrage

import (
	"log/slog"
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

const (
	// historyCapacity bounds the rolling opportunity history (FIFO eviction).
	historyCapacity = 1000

	// recentWindow is how many of the latest history entries feed the
	// frequency-based efficiency score.
	recentWindow = 100

	// frequencyFloor is the recent-opportunity count above which the market
	// is scored by opportunity frequency rather than the optimistic default.
	frequencyFloor = 10

	// optimisticEfficiency is assumed when recent opportunities are scarce.
	optimisticEfficiency = 0.9
)

// defaultTradeSize is recommended when no matching history exists.
var defaultTradeSize = decimal.NewFromInt(1000)

// Analyzer retains a bounded rolling history of accepted opportunities and
// per-venue aggregates, and derives market-wide analytics from them. All
// state mutation happens under a single mutex: the orchestrator is the only
// writer, but reads (status server, stats commands) may come from other
// goroutines.
type Analyzer struct {
	mu             sync.Mutex
	history        []domain.ArbitrageOpportunity
	dexPerformance map[string]*domain.DexPerformanceMetrics
	logger         *slog.Logger
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{
		dexPerformance: make(map[string]*domain.DexPerformanceMetrics),
		logger:         logger.With(slog.String("component", "analyzer")),
	}
}

// AddOpportunity updates both venues' aggregates and appends the opportunity
// to history, evicting the oldest entry once capacity is exceeded.
func (a *Analyzer) AddOpportunity(opp domain.ArbitrageOpportunity) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.updateDexMetrics(opp.BuyDex, opp.NetProfit)
	a.updateDexMetrics(opp.SellDex, opp.NetProfit)

	a.history = append(a.history, opp)
	if len(a.history) > historyCapacity {
		a.history = a.history[1:]
	}
}

// updateDexMetrics applies the per-venue blend. AverageProfit is intentionally
// (old+new)/2, a two-sample exponential-style blend, not a cumulative mean;
// downstream consumers depend on this exact formula.
func (a *Analyzer) updateDexMetrics(dexName string, netProfit decimal.Decimal) {
	m, ok := a.dexPerformance[dexName]
	if !ok {
		m = &domain.DexPerformanceMetrics{
			AverageExecutionTime: baseExecutionSeconds,
		}
		a.dexPerformance[dexName] = m
	}
	m.TotalOpportunities++
	m.AverageProfit = m.AverageProfit.Add(netProfit).Div(decimal.NewFromInt(2))
}

// AnalyzeMarketEfficiency scores a quote batch in [0,1]: 1 means no
// exploitable dispersion. Fewer than two quotes is perfectly efficient by
// definition. Otherwise the score is 1 minus the mean absolute relative
// deviation from the batch average, clamped at 0. A deviation that does not
// convert to a finite float is skipped, not fatal.
func (a *Analyzer) AnalyzeMarketEfficiency(quotes []domain.PriceQuote) float64 {
	if len(quotes) < 2 {
		return 1.0
	}

	avg := averagePrice(quotes)

	var deviations []float64
	for _, q := range quotes {
		var deviation decimal.Decimal
		if avg.IsPositive() {
			deviation = q.Price.Sub(avg).Div(avg).Abs()
		}
		f, _ := deviation.Float64()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			continue
		}
		deviations = append(deviations, f)
	}

	if len(deviations) == 0 {
		return 1.0
	}

	var sum float64
	for _, d := range deviations {
		sum += d
	}
	meanDeviation := sum / float64(len(deviations))
	return math.Max(0, 1-meanDeviation)
}

// GenerateMarketAnalysis derives an on-demand snapshot from history: average
// profit per opportunity, the most profitable pair label, the best-performing
// (buy, sell) venue combination, and a frequency-based efficiency score over
// the most recent window.
func (a *Analyzer) GenerateMarketAnalysis() domain.MarketAnalysis {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := uint64(len(a.history))

	avgProfit := decimal.Zero
	if total > 0 {
		sum := decimal.Zero
		for _, opp := range a.history {
			sum = sum.Add(opp.NetProfit)
		}
		avgProfit = sum.Div(decimal.NewFromInt(int64(total)))
	}

	recent := len(a.history)
	if recent > recentWindow {
		recent = recentWindow
	}
	efficiency := optimisticEfficiency
	if recent > frequencyFloor {
		// A busier recent window means a less efficient market.
		efficiency = math.Max(0, 1-float64(recent)/float64(recentWindow))
	}

	return domain.MarketAnalysis{
		TotalOpportunitiesFound:     total,
		AverageProfitPerOpportunity: avgProfit,
		MostProfitablePair:          a.mostProfitablePair(),
		BestPerformingDexPair:       a.bestDexPair(),
		MarketEfficiencyScore:       efficiency,
	}
}

// mostProfitablePair returns the pair label with the highest summed net
// profit across history, or nil when history is empty.
func (a *Analyzer) mostProfitablePair() *string {
	profits := make(map[string]decimal.Decimal)
	for _, opp := range a.history {
		label := opp.Pair.Label()
		profits[label] = profits[label].Add(opp.NetProfit)
	}

	var best *string
	var bestProfit decimal.Decimal
	for label, profit := range profits {
		if best == nil || profit.GreaterThan(bestProfit) {
			l := label
			best = &l
			bestProfit = profit
		}
	}
	return best
}

// bestDexPair returns the (buy, sell) venue combination with the highest
// summed net profit, or nil when history is empty.
func (a *Analyzer) bestDexPair() *domain.DexPairKey {
	profits := make(map[domain.DexPairKey]decimal.Decimal)
	for _, opp := range a.history {
		key := domain.DexPairKey{BuyDex: opp.BuyDex, SellDex: opp.SellDex}
		profits[key] = profits[key].Add(opp.NetProfit)
	}

	var best *domain.DexPairKey
	var bestProfit decimal.Decimal
	for key, profit := range profits {
		if best == nil || profit.GreaterThan(bestProfit) {
			k := key
			best = &k
			bestProfit = profit
		}
	}
	return best
}

// DexPerformance returns a copy of the aggregates for a venue, and whether
// the venue has been seen at all.
func (a *Analyzer) DexPerformance(dexName string) (domain.DexPerformanceMetrics, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	m, ok := a.dexPerformance[dexName]
	if !ok {
		return domain.DexPerformanceMetrics{}, false
	}
	return *m, true
}

// RecommendOptimalTradeSize scans history for the given pair label and
// returns the trade amount of the entry with the best historical ROI
// (net profit over trade amount times buy price, non-positive bases skipped).
// With no matching history it returns the fixed default of 1000.
func (a *Analyzer) RecommendOptimalTradeSize(pairLabel string) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()

	bestROI := decimal.Zero
	optimal := defaultTradeSize
	matched := false

	for _, opp := range a.history {
		if opp.Pair.Label() != pairLabel {
			continue
		}
		matched = true
		investment := opp.TradeAmount.Mul(opp.BuyPrice)
		if !investment.IsPositive() {
			continue
		}
		roi := opp.NetProfit.Div(investment)
		if roi.GreaterThan(bestROI) {
			bestROI = roi
			optimal = opp.TradeAmount
		}
	}

	if !matched {
		return defaultTradeSize
	}
	return optimal
}

// ClearHistory resets history and venue aggregates. This is an explicit
// operator action, never automatic.
func (a *Analyzer) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = nil
	a.dexPerformance = make(map[string]*domain.DexPerformanceMetrics)
	a.logger.Info("opportunity history cleared")
}

// OpportunityCount returns the current history length.
func (a *Analyzer) OpportunityCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.history)
}

// averagePrice returns the arithmetic mean price of a quote batch, zero for
// an empty batch.
func averagePrice(quotes []domain.PriceQuote) decimal.Decimal {
	if len(quotes) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, q := range quotes {
		sum = sum.Add(q.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(quotes))))
}
