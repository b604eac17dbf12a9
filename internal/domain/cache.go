package domain

import "context"

// QuoteCache stores the latest quote batch per token pair so that a detection
// cycle can be replayed or inspected without re-hitting the chain. Entries
// expire on their own; a cache miss is ErrNotFound, never stale data.
type QuoteCache interface {
	// SetQuotes stores the batch of quotes fetched for a pair this cycle.
	SetQuotes(ctx context.Context, pair TokenPair, quotes []PriceQuote) error

	// GetQuotes returns the cached batch for a pair, or ErrNotFound when the
	// entry is missing or expired.
	GetQuotes(ctx context.Context, pair TokenPair) ([]PriceQuote, error)
}

// SignalBus is a publish/subscribe fabric for bot events. Payloads are raw
// bytes; callers own the encoding (JSON throughout this codebase).
type SignalBus interface {
	// Publish sends a payload to every subscriber of a channel.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe returns a read-only channel of payloads. The subscription is
	// closed when ctx is cancelled; the returned channel is closed then too.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
