package arbitrage

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

const (
	// baseExecutionSeconds is the baseline execution-time estimate.
	baseExecutionSeconds uint64 = 30

	// largeTradeThreshold is the trade amount above which the execution-time
	// estimate doubles.
	largeTradeThreshold = 10000
)

var (
	// maxPriceImpact caps the estimated price impact at 10%.
	maxPriceImpact = decimal.NewFromFloat(0.1)

	// defaultPriceImpact is assumed when pool liquidity is unknown.
	defaultPriceImpact = decimal.NewFromFloat(0.01)
)

// Calculator refines a detected opportunity with cost-aware profit figures.
// It is stateless with respect to opportunities and holds only the slippage
// tolerance and a flat additional fee.
type Calculator struct {
	slippageTolerance decimal.Decimal // fraction, e.g. 0.005 for 0.5%
	additionalFees    decimal.Decimal
	logger            *slog.Logger
}

// NewCalculator creates a calculator. slippagePercent is expressed in percent
// (0.5 means 0.5%) and converted to a fraction internally.
func NewCalculator(slippagePercent float64, additionalFees decimal.Decimal, logger *slog.Logger) *Calculator {
	return &Calculator{
		slippageTolerance: decimal.NewFromFloat(slippagePercent).Div(decimal.NewFromInt(100)),
		additionalFees:    additionalFees,
		logger:            logger.With(slog.String("component", "calculator")),
	}
}

// NewDefaultCalculator returns a calculator with 0.5% slippage tolerance and
// a flat additional fee of 1.
func NewDefaultCalculator(logger *slog.Logger) *Calculator {
	return NewCalculator(0.5, decimal.NewFromInt(1), logger)
}

// RealisticProfit recomputes the opportunity's profit assuming adverse
// slippage on both legs: the buy price is inflated and the sell price
// deflated by the tolerance, then gas and the flat fee are subtracted. The
// result is always at most the opportunity's naive net profit.
func (c *Calculator) RealisticProfit(opp domain.ArbitrageOpportunity) decimal.Decimal {
	one := decimal.NewFromInt(1)
	buyWithSlippage := opp.BuyPrice.Mul(one.Add(c.slippageTolerance))
	sellWithSlippage := opp.SellPrice.Mul(one.Sub(c.slippageTolerance))

	grossProfit := sellWithSlippage.Sub(buyWithSlippage).Mul(opp.TradeAmount)
	netProfit := grossProfit.Sub(opp.GasCost).Sub(c.additionalFees)

	c.logger.Debug("realistic profit",
		slog.String("gross", grossProfit.String()),
		slog.String("gas", opp.GasCost.String()),
		slog.String("fees", c.additionalFees.String()),
		slog.String("net", netProfit.String()),
	)
	return netProfit
}

// ROI returns the opportunity's return on investment in percent, where the
// investment base is trade amount times buy price. A non-positive base yields
// zero rather than a division error.
func (c *Calculator) ROI(opp domain.ArbitrageOpportunity) decimal.Decimal {
	investment := opp.TradeAmount.Mul(opp.BuyPrice)
	if !investment.IsPositive() {
		return decimal.Zero
	}
	return opp.NetProfit.Div(investment).Mul(decimal.NewFromInt(100))
}

// BreakEvenPrice returns the minimum sell price that covers gas plus the flat
// fee over the trade amount. It is always at least the buy price.
func (c *Calculator) BreakEvenPrice(opp domain.ArbitrageOpportunity) decimal.Decimal {
	totalCosts := opp.GasCost.Add(c.additionalFees)
	return opp.BuyPrice.Add(totalCosts.Div(opp.TradeAmount))
}

// EstimateExecutionTime returns a coarse execution-time estimate in seconds:
// a fixed base, doubled for trades above the large-trade threshold. This is a
// placeholder cost model, monotonic in trade size, not a network measurement.
func (c *Calculator) EstimateExecutionTime(opp domain.ArbitrageOpportunity) uint64 {
	if opp.TradeAmount.GreaterThan(decimal.NewFromInt(largeTradeThreshold)) {
		return baseExecutionSeconds * 2
	}
	return baseExecutionSeconds
}

// PriceImpact estimates the fractional price impact of a trade as
// amount/liquidity, capped at 10%. Unknown or non-positive liquidity falls
// back to a fixed 1% default.
func (c *Calculator) PriceImpact(tradeAmount decimal.Decimal, liquidity decimal.NullDecimal) decimal.Decimal {
	if !liquidity.Valid || !liquidity.Decimal.IsPositive() {
		return defaultPriceImpact
	}
	impact := tradeAmount.Div(liquidity.Decimal)
	if impact.GreaterThan(maxPriceImpact) {
		return maxPriceImpact
	}
	return impact
}

// AdjustForMarketConditions scales the opportunity's gas cost by
// (1 + volatility) and recomputes net profit from the unchanged estimated
// profit. This is the single sanctioned post-construction revision of an
// opportunity; callers must treat it as a new reading afterward.
func (c *Calculator) AdjustForMarketConditions(opp *domain.ArbitrageOpportunity, marketVolatility float64) {
	multiplier := decimal.NewFromFloat(1 + marketVolatility)
	opp.GasCost = opp.GasCost.Mul(multiplier)
	opp.NetProfit = opp.EstimatedProfit.Sub(opp.GasCost)

	c.logger.Debug("opportunity adjusted for market conditions",
		slog.Float64("volatility", marketVolatility),
		slog.String("gas_cost", opp.GasCost.String()),
		slog.String("net_profit", opp.NetProfit.String()),
	)
}
