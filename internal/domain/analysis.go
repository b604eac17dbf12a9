package domain

import "github.com/shopspring/decimal"

// DexPerformanceMetrics aggregates per-venue outcomes inside the analyzer.
// AverageProfit uses a two-sample blend (old+new)/2 rather than a cumulative
// mean; recent samples weigh disproportionately and downstream consumers
// depend on that exact behavior.
type DexPerformanceMetrics struct {
	TotalOpportunities   uint64          `json:"total_opportunities"`
	AverageProfit        decimal.Decimal `json:"average_profit"`
	SuccessRate          float64         `json:"success_rate"`
	AverageExecutionTime uint64          `json:"average_execution_time"`
}

// MarketAnalysis is a derived, on-demand snapshot of the analyzer's history.
// Optional labels are nil when no history supports them.
type MarketAnalysis struct {
	TotalOpportunitiesFound     uint64          `json:"total_opportunities_found"`
	AverageProfitPerOpportunity decimal.Decimal `json:"average_profit_per_opportunity"`
	MostProfitablePair          *string         `json:"most_profitable_pair"`
	BestPerformingDexPair       *DexPairKey     `json:"best_performing_dex_pair"`
	MarketEfficiencyScore       float64         `json:"market_efficiency_score"`
}

// DexPairKey identifies a (buy venue, sell venue) combination.
type DexPairKey struct {
	BuyDex  string `json:"buy_dex"`
	SellDex string `json:"sell_dex"`
}

// OpportunityStats summarizes persisted opportunities over a trailing window.
type OpportunityStats struct {
	TotalOpportunities    int64           `json:"total_opportunities"`
	TotalProfit           decimal.Decimal `json:"total_profit"`
	AverageProfit         decimal.Decimal `json:"average_profit"`
	BestOpportunityProfit decimal.Decimal `json:"best_opportunity_profit"`
	MostActiveDexPair     *DexPairKey     `json:"most_active_dex_pair"`
}
