package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

func TestQuoteKeyOrderIndependent(t *testing.T) {
	weth := "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619"
	usdc := "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"

	forward := quoteKey(domain.TokenPair{Token0: weth, Token1: usdc})
	reversed := quoteKey(domain.TokenPair{Token0: usdc, Token1: weth})

	assert.Equal(t, forward, reversed)
	assert.Equal(t,
		"quotes:0x2791bca1f2de4661ed88a30c99a7a9449aa84174:0x7ceb23fd6bc0add59e62ac25578270cff1b9f619",
		forward)
}

func TestQuoteKeyCaseInsensitive(t *testing.T) {
	upper := quoteKey(domain.TokenPair{Token0: "0xAAA", Token1: "0xBBB"})
	lower := quoteKey(domain.TokenPair{Token0: "0xaaa", Token1: "0xbbb"})
	assert.Equal(t, upper, lower)
}
