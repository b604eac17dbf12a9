package dex

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

// FilterValidQuotes drops quotes with non-positive prices and quotes older
// than 2× the cache TTL. The survivors are returned in their original order.
func FilterValidQuotes(quotes []domain.PriceQuote, ttl time.Duration, logger *slog.Logger) []domain.PriceQuote {
	now := time.Now()
	valid := make([]domain.PriceQuote, 0, len(quotes))
	for _, q := range quotes {
		if !q.Price.IsPositive() {
			logger.Warn("filtering out invalid quote",
				slog.String("dex", q.DexName),
				slog.String("price", q.Price.String()),
			)
			continue
		}
		if now.Sub(q.Timestamp) > 2*ttl {
			logger.Warn("filtering out stale quote", slog.String("dex", q.DexName))
			continue
		}
		valid = append(valid, q)
	}
	return valid
}

// BestPrices returns the lowest- and highest-priced quotes of a batch, or
// nils for an empty batch.
func BestPrices(quotes []domain.PriceQuote) (lowest, highest *domain.PriceQuote) {
	for i := range quotes {
		q := &quotes[i]
		if lowest == nil || q.Price.LessThan(lowest.Price) {
			lowest = q
		}
		if highest == nil || q.Price.GreaterThan(highest.Price) {
			highest = q
		}
	}
	return lowest, highest
}

// PriceSpread returns the percentage spread between the batch's extreme
// prices, or false when it cannot be computed (fewer than one valid quote or
// a non-positive low price).
func PriceSpread(quotes []domain.PriceQuote) (decimal.Decimal, bool) {
	lowest, highest := BestPrices(quotes)
	if lowest == nil || highest == nil || !lowest.Price.IsPositive() {
		return decimal.Zero, false
	}
	spread := highest.Price.Sub(lowest.Price).Div(lowest.Price).Mul(decimal.NewFromInt(100))
	return spread, true
}
