package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

const busBuffer = 128

// SignalBus implements domain.SignalBus on Redis pub/sub. It lets a status
// server or external tooling observe bot events without linking against the
// bot itself.
type SignalBus struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewSignalBus(c *Client, logger *slog.Logger) *SignalBus {
	return &SignalBus{
		rdb:    c.Underlying(),
		logger: logger.With(slog.String("component", "signal_bus")),
	}
}

// Publish sends a payload to every subscriber of a channel.
func (b *SignalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe returns a channel of payloads published to the given channel.
// The subscription lives until ctx is cancelled; slow consumers drop
// messages rather than block the reader goroutine.
func (b *SignalBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	sub := b.rdb.Subscribe(ctx, channel)

	// Wait for the subscription to be confirmed so callers don't miss
	// messages published right after Subscribe returns.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", channel, err)
	}

	out := make(chan []byte, busBuffer)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					b.logger.Warn("dropping message for slow subscriber",
						slog.String("channel", channel))
				}
			}
		}
	}()
	return out, nil
}

var _ domain.SignalBus = (*SignalBus)(nil)
