package arbitrage

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/dexarb/internal/config"
	"github.com/alanyoungcy/dexarb/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func testPair() domain.TokenPair {
	return domain.TokenPair{
		Token0:       "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619",
		Token1:       "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
		Token0Symbol: "WETH",
		Token1Symbol: "USDC",
	}
}

func quote(dex string, price string) domain.PriceQuote {
	return domain.PriceQuote{
		DexName:   dex,
		Pair:      testPair(),
		Price:     decimal.RequireFromString(price),
		Timestamp: time.Now().UTC(),
	}
}

func newTestDetector(t *testing.T, threshold string) *Detector {
	t.Helper()
	d, err := NewDetector(config.ArbitrageConfig{
		MinProfitThreshold: threshold,
		TradeAmount:        "1000.0",
		GasCostEstimate:    "2.0",
	}, testLogger())
	require.NoError(t, err)
	return d
}

func TestNewDetectorRejectsMalformedDecimals(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ArbitrageConfig
	}{
		{"bad threshold", config.ArbitrageConfig{MinProfitThreshold: "abc", TradeAmount: "1000", GasCostEstimate: "2"}},
		{"bad trade amount", config.ArbitrageConfig{MinProfitThreshold: "5", TradeAmount: "", GasCostEstimate: "2"}},
		{"bad gas cost", config.ArbitrageConfig{MinProfitThreshold: "5", TradeAmount: "1000", GasCostEstimate: "two"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDetector(tt.cfg, testLogger())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestDetectOpportunitiesSpread(t *testing.T) {
	d := newTestDetector(t, "5.0")

	opps := d.DetectOpportunities([]domain.PriceQuote{
		quote("Uniswap", "2000"),
		quote("QuickSwap", "2010"),
	})

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.Equal(t, "Uniswap", opp.BuyDex)
	assert.Equal(t, "QuickSwap", opp.SellDex)
	assert.True(t, opp.BuyPrice.Equal(decimal.NewFromInt(2000)))
	assert.True(t, opp.SellPrice.Equal(decimal.NewFromInt(2010)))
	assert.True(t, opp.EstimatedProfit.Equal(decimal.NewFromInt(10000)),
		"estimated profit was %s", opp.EstimatedProfit)
	assert.True(t, opp.NetProfit.Equal(decimal.NewFromInt(9998)),
		"net profit was %s", opp.NetProfit)
	assert.NotEmpty(t, opp.ID)
	assert.False(t, opp.Timestamp.IsZero())
}

func TestDetectOpportunitiesBelowThreshold(t *testing.T) {
	d := newTestDetector(t, "20000")

	opps := d.DetectOpportunities([]domain.PriceQuote{
		quote("Uniswap", "2000"),
		quote("QuickSwap", "2010"),
	})
	assert.Empty(t, opps)
}

func TestDetectOpportunitiesEqualPrices(t *testing.T) {
	d := newTestDetector(t, "5.0")

	opps := d.DetectOpportunities([]domain.PriceQuote{
		quote("Uniswap", "2000"),
		quote("QuickSwap", "2000"),
	})
	assert.Empty(t, opps)
}

func TestDetectOpportunitiesFewerThanTwoQuotes(t *testing.T) {
	d := newTestDetector(t, "5.0")

	assert.Empty(t, d.DetectOpportunities(nil))
	assert.Empty(t, d.DetectOpportunities([]domain.PriceQuote{quote("Uniswap", "2000")}))
}

func TestDetectOpportunitiesSkipsMismatchedPairs(t *testing.T) {
	d := newTestDetector(t, "5.0")

	other := quote("QuickSwap", "2010")
	other.Pair.Token1 = "0x1BFD67037B42Cf73acF2047067bd4F2C47D9BfD6"
	other.Pair.Token1Symbol = "WBTC"

	opps := d.DetectOpportunities([]domain.PriceQuote{
		quote("Uniswap", "2000"),
		other,
	})
	assert.Empty(t, opps)
}

func TestDetectOpportunitiesOrderIndependentPairMatch(t *testing.T) {
	d := newTestDetector(t, "5.0")

	reversed := quote("QuickSwap", "2010")
	reversed.Pair.Token0, reversed.Pair.Token1 = reversed.Pair.Token1, reversed.Pair.Token0
	reversed.Pair.Token0Symbol, reversed.Pair.Token1Symbol = reversed.Pair.Token1Symbol, reversed.Pair.Token0Symbol

	opps := d.DetectOpportunities([]domain.PriceQuote{
		quote("Uniswap", "2000"),
		reversed,
	})
	require.Len(t, opps, 1)
	assert.Equal(t, "Uniswap", opps[0].BuyDex)
}

func TestDetectOpportunitiesBothOrientations(t *testing.T) {
	// Three venues with strictly increasing prices: every ordered pair with a
	// higher sell than buy is a candidate, six orientations scanned in total.
	d, err := NewDetector(config.ArbitrageConfig{
		MinProfitThreshold: "0.5",
		TradeAmount:        "1",
		GasCostEstimate:    "0",
	}, testLogger())
	require.NoError(t, err)

	opps := d.DetectOpportunities([]domain.PriceQuote{
		quote("A", "100"),
		quote("B", "101"),
		quote("C", "102"),
	})
	// (A,B), (A,C), (B,C) are profitable; reverse orientations are not.
	assert.Len(t, opps, 3)
	for _, opp := range opps {
		assert.True(t, opp.SellPrice.GreaterThan(opp.BuyPrice))
		assert.True(t, opp.NetProfit.Equal(opp.EstimatedProfit.Sub(opp.GasCost)))
	}
}

func TestUpdateGasCostEstimate(t *testing.T) {
	d := newTestDetector(t, "5.0")
	require.True(t, d.GasCostEstimate().Equal(decimal.RequireFromString("2.0")))

	d.UpdateGasCostEstimate(decimal.NewFromInt(5000))

	// Gas now swallows the whole spread; nothing clears the threshold.
	opps := d.DetectOpportunities([]domain.PriceQuote{
		quote("Uniswap", "2000"),
		quote("QuickSwap", "2010"),
	})
	assert.Empty(t, opps)
}
