package chain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
	require.NoError(t, err)
	assert.Equal(t, "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619", addr.Hex())

	_, err = ParseAddress("not-an-address")
	assert.Error(t, err)

	_, err = ParseAddress("0x123")
	assert.Error(t, err)
}

func TestGasCostUSD(t *testing.T) {
	// 0.01 native token at $2000 = $20.
	costWei := new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)
	usd := GasCostUSD(costWei, decimal.NewFromInt(2000))
	assert.True(t, usd.Equal(decimal.NewFromInt(20)), "got %s", usd)

	assert.True(t, GasCostUSD(big.NewInt(0), decimal.NewFromInt(2000)).IsZero())
}
