package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

// QuoteCache implements domain.QuoteCache by storing each pair's latest quote
// batch as a JSON value at "quotes:{token0}:{token1}" with a TTL. The key is
// built from the lexicographically ordered token addresses so both pair
// orientations hit the same entry.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache creates a QuoteCache backed by the given Client. A zero ttl
// disables expiry.
func NewQuoteCache(c *Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying(), ttl: ttl}
}

func quoteKey(pair domain.TokenPair) string {
	a, b := strings.ToLower(pair.Token0), strings.ToLower(pair.Token1)
	if b < a {
		a, b = b, a
	}
	return "quotes:" + a + ":" + b
}

// SetQuotes stores the batch of quotes fetched for a pair this cycle.
func (qc *QuoteCache) SetQuotes(ctx context.Context, pair domain.TokenPair, quotes []domain.PriceQuote) error {
	payload, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("redis: marshal quotes %s: %w", pair.Label(), err)
	}
	if err := qc.rdb.Set(ctx, quoteKey(pair), payload, qc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set quotes %s: %w", pair.Label(), err)
	}
	return nil
}

// GetQuotes returns the cached batch for a pair, or domain.ErrNotFound when
// the entry is missing or expired.
func (qc *QuoteCache) GetQuotes(ctx context.Context, pair domain.TokenPair) ([]domain.PriceQuote, error) {
	payload, err := qc.rdb.Get(ctx, quoteKey(pair)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get quotes %s: %w", pair.Label(), err)
	}

	var quotes []domain.PriceQuote
	if err := json.Unmarshal(payload, &quotes); err != nil {
		return nil, fmt.Errorf("redis: unmarshal quotes %s: %w", pair.Label(), err)
	}
	return quotes, nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
