package service

import (
	"context"

	"github.com/streamhub/streamhub/balances"
	"github.com/streamhub/streamhub/events"
	"github.com/streamhub/streamhub/streams"
)

// balanceRefreshConsumer re-syncs the cached balance whenever a payment is
// observed, ours or external. The host can publish "payment_received" when
// its own node subscription sees settled invoices.
type balanceRefreshConsumer struct {
	events.EventSubscriber
	balancesSvc balances.BalancesService
}

func (c *balanceRefreshConsumer) ConsumeEvent(ctx context.Context, event *events.Event, globalProperties map[string]interface{}) {
	switch event.Event {
	case streams.EVENT_STREAM_PART_PAID, "payment_received", "payment_sent":
		c.balancesSvc.Refresh()
	}
}
