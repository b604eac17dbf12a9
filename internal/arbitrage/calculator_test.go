package arbitrage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

func testOpportunity(buy, sell, amount, gas string) domain.ArbitrageOpportunity {
	return domain.NewOpportunity(
		testPair(),
		"Uniswap", "QuickSwap",
		decimal.RequireFromString(buy),
		decimal.RequireFromString(sell),
		decimal.RequireFromString(amount),
		decimal.RequireFromString(gas),
	)
}

func TestRealisticProfitBelowNaive(t *testing.T) {
	c := NewDefaultCalculator(testLogger())
	opp := testOpportunity("2000", "2010", "1000", "2")

	realistic := c.RealisticProfit(opp)
	assert.True(t, realistic.LessThan(opp.NetProfit),
		"realistic %s should undercut naive %s", realistic, opp.NetProfit)

	// 0.5% slippage on both legs: buy at 2010, sell at 1999.95. Gross is
	// negative, then gas and the flat fee come off on top.
	expected := decimal.RequireFromString("-10053")
	assert.True(t, realistic.Equal(expected), "got %s", realistic)
}

func TestRealisticProfitZeroSlippage(t *testing.T) {
	c := NewCalculator(0, decimal.Zero, testLogger())
	opp := testOpportunity("2000", "2010", "1000", "2")

	// With no slippage and no flat fee the realistic figure collapses to the
	// naive net profit.
	assert.True(t, c.RealisticProfit(opp).Equal(opp.NetProfit))
}

func TestROI(t *testing.T) {
	c := NewDefaultCalculator(testLogger())
	opp := testOpportunity("2000", "2010", "1000", "2")

	// net 9998 over an investment of 2,000,000.
	roi := c.ROI(opp)
	expected := decimal.RequireFromString("9998").
		Div(decimal.RequireFromString("2000000")).
		Mul(decimal.NewFromInt(100))
	assert.True(t, roi.Equal(expected), "got %s", roi)
}

func TestROIZeroInvestment(t *testing.T) {
	c := NewDefaultCalculator(testLogger())
	opp := testOpportunity("0", "10", "1000", "2")
	assert.True(t, c.ROI(opp).Equal(decimal.Zero))
}

func TestBreakEvenPrice(t *testing.T) {
	c := NewDefaultCalculator(testLogger())
	opp := testOpportunity("2000", "2010", "1000", "2")

	// buy price plus (gas + fee) / amount = 2000 + 3/1000.
	breakEven := c.BreakEvenPrice(opp)
	assert.True(t, breakEven.Equal(decimal.RequireFromString("2000.003")), "got %s", breakEven)
	assert.True(t, breakEven.GreaterThanOrEqual(opp.BuyPrice))
}

func TestEstimateExecutionTime(t *testing.T) {
	c := NewDefaultCalculator(testLogger())

	small := testOpportunity("2000", "2010", "1000", "2")
	assert.Equal(t, uint64(30), c.EstimateExecutionTime(small))

	atThreshold := testOpportunity("2000", "2010", "10000", "2")
	assert.Equal(t, uint64(30), c.EstimateExecutionTime(atThreshold))

	large := testOpportunity("2000", "2010", "10001", "2")
	assert.Equal(t, uint64(60), c.EstimateExecutionTime(large))
}

func TestPriceImpact(t *testing.T) {
	c := NewDefaultCalculator(testLogger())

	liq := func(s string) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
	}

	tests := []struct {
		name      string
		amount    string
		liquidity decimal.NullDecimal
		want      string
	}{
		{"shallow trade", "40", liq("500"), "0.08"},
		{"capped at ten percent", "1000", liq("500"), "0.1"},
		{"unknown liquidity", "1000", decimal.NullDecimal{}, "0.01"},
		{"zero liquidity", "1000", liq("0"), "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.PriceImpact(decimal.RequireFromString(tt.amount), tt.liquidity)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestAdjustForMarketConditions(t *testing.T) {
	c := NewDefaultCalculator(testLogger())
	opp := testOpportunity("2000", "2010", "1000", "2")
	estimatedBefore := opp.EstimatedProfit

	c.AdjustForMarketConditions(&opp, 0.5)

	require.True(t, opp.GasCost.Equal(decimal.NewFromInt(3)), "got gas %s", opp.GasCost)
	assert.True(t, opp.EstimatedProfit.Equal(estimatedBefore))
	assert.True(t, opp.NetProfit.Equal(opp.EstimatedProfit.Sub(opp.GasCost)))
}
