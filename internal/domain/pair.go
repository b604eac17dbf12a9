// Package domain defines the core value objects and the interfaces that the
// detection, analysis, and persistence layers share. Types here carry no
// behavior beyond derived-field construction and are safe to pass by value.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenPair identifies the two tokens of a monitored market by address plus
// their display symbols. token0/token1 ordering is a property of how a quote
// was produced, not of the pair's identity; use Matches for comparisons.
type TokenPair struct {
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	Token0Symbol string `json:"token0_symbol"`
	Token1Symbol string `json:"token1_symbol"`
}

// Matches reports whether two pairs reference the same underlying tokens,
// regardless of token0/token1 ordering.
func (p TokenPair) Matches(other TokenPair) bool {
	return (p.Token0 == other.Token0 && p.Token1 == other.Token1) ||
		(p.Token0 == other.Token1 && p.Token1 == other.Token0)
}

// Label returns the "{sym0}/{sym1}" display label used as the aggregation key
// in analytics and trade-size recommendations.
func (p TokenPair) Label() string {
	return p.Token0Symbol + "/" + p.Token1Symbol
}

// PriceQuote is a single venue's price observation for a token pair. Price is
// expressed as token1 per token0. Quotes are immutable once produced.
type PriceQuote struct {
	DexName   string              `json:"dex_name"`
	Pair      TokenPair           `json:"token_pair"`
	Price     decimal.Decimal     `json:"price"`
	Timestamp time.Time           `json:"timestamp"`
	Liquidity decimal.NullDecimal `json:"liquidity"`
}
