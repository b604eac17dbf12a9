package dex

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

func testQuote(dex, price string, age time.Duration) domain.PriceQuote {
	return domain.PriceQuote{
		DexName: dex,
		Pair: domain.TokenPair{
			Token0Symbol: "WETH",
			Token1Symbol: "USDC",
		},
		Price:     decimal.RequireFromString(price),
		Timestamp: time.Now().Add(-age),
	}
}

func TestFilterValidQuotes(t *testing.T) {
	logger := slog.Default()
	ttl := 30 * time.Second

	quotes := []domain.PriceQuote{
		testQuote("Uniswap", "2000", 0),
		testQuote("QuickSwap", "0", 0),        // non-positive price
		testQuote("SushiSwap", "-5", 0),       // negative price
		testQuote("Balancer", "2010", 2*time.Minute), // older than 2x ttl
		testQuote("Curve", "2005", 45*time.Second),   // within 2x ttl
	}

	valid := FilterValidQuotes(quotes, ttl, logger)
	require.Len(t, valid, 2)
	assert.Equal(t, "Uniswap", valid[0].DexName)
	assert.Equal(t, "Curve", valid[1].DexName)
}

func TestFilterValidQuotesEmpty(t *testing.T) {
	valid := FilterValidQuotes(nil, time.Second, slog.Default())
	assert.Empty(t, valid)
}

func TestBestPrices(t *testing.T) {
	quotes := []domain.PriceQuote{
		testQuote("Uniswap", "2005", 0),
		testQuote("QuickSwap", "2000", 0),
		testQuote("SushiSwap", "2010", 0),
	}

	lowest, highest := BestPrices(quotes)
	require.NotNil(t, lowest)
	require.NotNil(t, highest)
	assert.Equal(t, "QuickSwap", lowest.DexName)
	assert.Equal(t, "SushiSwap", highest.DexName)
}

func TestBestPricesSingleQuote(t *testing.T) {
	quotes := []domain.PriceQuote{testQuote("Uniswap", "2000", 0)}
	lowest, highest := BestPrices(quotes)
	assert.Same(t, lowest, highest)
}

func TestBestPricesEmpty(t *testing.T) {
	lowest, highest := BestPrices(nil)
	assert.Nil(t, lowest)
	assert.Nil(t, highest)
}

func TestPriceSpread(t *testing.T) {
	quotes := []domain.PriceQuote{
		testQuote("Uniswap", "2000", 0),
		testQuote("QuickSwap", "2010", 0),
	}

	spread, ok := PriceSpread(quotes)
	require.True(t, ok)
	// (2010 - 2000) / 2000 * 100 = 0.5%
	assert.True(t, spread.Equal(decimal.RequireFromString("0.5")), "got %s", spread)
}

func TestPriceSpreadNotComputable(t *testing.T) {
	_, ok := PriceSpread(nil)
	assert.False(t, ok)

	_, ok = PriceSpread([]domain.PriceQuote{testQuote("Uniswap", "0", 0)})
	assert.False(t, ok)
}

func TestPriceSpreadSingleQuote(t *testing.T) {
	spread, ok := PriceSpread([]domain.PriceQuote{testQuote("Uniswap", "2000", 0)})
	require.True(t, ok)
	assert.True(t, spread.IsZero())
}
