package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairMatches(t *testing.T) {
	pair := TokenPair{Token0: "0xAAA", Token1: "0xBBB"}

	assert.True(t, pair.Matches(TokenPair{Token0: "0xAAA", Token1: "0xBBB"}))
	assert.True(t, pair.Matches(TokenPair{Token0: "0xBBB", Token1: "0xAAA"}))
	assert.False(t, pair.Matches(TokenPair{Token0: "0xAAA", Token1: "0xCCC"}))
	assert.False(t, pair.Matches(TokenPair{Token0: "0xCCC", Token1: "0xDDD"}))
}

func TestTokenPairLabel(t *testing.T) {
	pair := TokenPair{Token0Symbol: "WETH", Token1Symbol: "USDC"}
	assert.Equal(t, "WETH/USDC", pair.Label())
}

func TestNewOpportunityDerivedFields(t *testing.T) {
	pair := TokenPair{Token0Symbol: "WETH", Token1Symbol: "USDC"}
	opp := NewOpportunity(
		pair,
		"Uniswap", "QuickSwap",
		decimal.NewFromInt(2000),
		decimal.NewFromInt(2010),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(2),
	)

	assert.NotEmpty(t, opp.ID)
	assert.Equal(t, "Uniswap", opp.BuyDex)
	assert.Equal(t, "QuickSwap", opp.SellDex)
	assert.True(t, opp.PriceDifference.Equal(decimal.NewFromInt(10)))
	assert.True(t, opp.PriceDifferencePercentage.Equal(decimal.RequireFromString("0.5")),
		"got %s", opp.PriceDifferencePercentage)
	assert.True(t, opp.EstimatedProfit.Equal(decimal.NewFromInt(10000)))
	assert.True(t, opp.NetProfit.Equal(decimal.NewFromInt(9998)))
	assert.False(t, opp.Timestamp.IsZero())
}

func TestNewOpportunityUniqueIDs(t *testing.T) {
	pair := TokenPair{Token0Symbol: "WETH", Token1Symbol: "USDC"}
	a := NewOpportunity(pair, "A", "B", decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.NewFromInt(1), decimal.Zero)
	b := NewOpportunity(pair, "A", "B", decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.NewFromInt(1), decimal.Zero)
	require.NotEqual(t, a.ID, b.ID)
}

func TestNewOpportunityZeroBuyPrice(t *testing.T) {
	opp := NewOpportunity(
		TokenPair{},
		"A", "B",
		decimal.Zero,
		decimal.NewFromInt(10),
		decimal.NewFromInt(100),
		decimal.NewFromInt(1),
	)

	// No percentage when the buy price is zero; the absolute fields still hold.
	assert.True(t, opp.PriceDifferencePercentage.IsZero())
	assert.True(t, opp.EstimatedProfit.Equal(decimal.NewFromInt(1000)))
	assert.True(t, opp.NetProfit.Equal(decimal.NewFromInt(999)))
}
