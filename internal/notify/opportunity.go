package notify

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

// Event types emitted by the bot that operators can subscribe to.
const (
	EventOpportunity = "opportunity"
	EventBotStatus   = "bot_status"
	EventError       = "error"
)

// NotifyOpportunity formats a detected opportunity and dispatches it under the
// "opportunity" event type.
func (n *Notifier) NotifyOpportunity(ctx context.Context, opp domain.ArbitrageOpportunity) error {
	title := fmt.Sprintf("Arbitrage: %s", opp.Pair.Label())
	message := fmt.Sprintf(
		"Buy on %s at %s, sell on %s at %s\nSpread: %s%%\nEstimated profit: %s\nNet profit after gas: %s",
		opp.BuyDex, opp.BuyPrice.StringFixed(6),
		opp.SellDex, opp.SellPrice.StringFixed(6),
		opp.PriceDifferencePercentage.StringFixed(4),
		opp.EstimatedProfit.StringFixed(2),
		opp.NetProfit.StringFixed(2),
	)
	return n.Notify(ctx, EventOpportunity, title, message)
}

// NotifyBotStatus reports a bot lifecycle transition (started, paused, ...).
func (n *Notifier) NotifyBotStatus(ctx context.Context, status string) error {
	return n.Notify(ctx, EventBotStatus, "Bot status", status)
}

// NotifyError reports a runtime error under the "error" event type.
func (n *Notifier) NotifyError(ctx context.Context, errMsg string) error {
	return n.Notify(ctx, EventError, "Bot error", errMsg)
}
