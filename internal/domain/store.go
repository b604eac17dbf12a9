package domain

import (
	"context"
	"time"
)

// OpportunityStore persists detected arbitrage opportunities.
type OpportunityStore interface {
	// Insert stores a new opportunity.
	Insert(ctx context.Context, opp ArbitrageOpportunity) error

	// ListRecent returns the most recent opportunities ordered by detection
	// time descending. A non-positive limit returns all rows.
	ListRecent(ctx context.Context, limit int) ([]ArbitrageOpportunity, error)

	// ListByPair returns opportunities for the given token pair, matching the
	// pair's addresses order-independently.
	ListByPair(ctx context.Context, pair TokenPair) ([]ArbitrageOpportunity, error)

	// ListBefore returns all opportunities detected strictly before the given
	// cutoff, oldest first. Used by the archiver.
	ListBefore(ctx context.Context, before time.Time) ([]ArbitrageOpportunity, error)

	// Stats aggregates opportunities detected over the trailing number of days.
	Stats(ctx context.Context, days int) (OpportunityStats, error)

	// DeleteBefore removes opportunities detected strictly before the cutoff
	// and returns the number of rows deleted.
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// QuoteStore persists raw price quotes for offline analysis.
type QuoteStore interface {
	// Insert stores a single quote observation.
	Insert(ctx context.Context, quote PriceQuote) error

	// ListRange returns quotes observed within [start, end], newest first.
	// When dexName is non-empty only that venue's quotes are returned.
	ListRange(ctx context.Context, start, end time.Time, dexName string) ([]PriceQuote, error)

	// ListBefore returns all quotes observed strictly before the cutoff.
	ListBefore(ctx context.Context, before time.Time) ([]PriceQuote, error)

	// DeleteBefore removes quotes observed strictly before the cutoff and
	// returns the number of rows deleted.
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
