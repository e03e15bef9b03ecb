package amqp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"

	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
)

// ErrDeliveriesClosed is returned by Run when the broker closes the delivery channel.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Consumer invalidates cached balances for every ledger event it receives.
type Consumer struct {
	invalidator portssvc.BalanceInvalidatorSvc
}

func NewConsumer(invalidator portssvc.BalanceInvalidatorSvc) *Consumer {
	return &Consumer{invalidator: invalidator}
}

// Run processes deliveries until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp091.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping ledger event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.Handle(ctx, delivery)
		}
	}
}

// Handle acks a valid event after invalidating its group and drops malformed ones.
func (c *Consumer) Handle(ctx context.Context, delivery amqp091.Delivery) {
	event, err := DecodeEvent(delivery.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to decode ledger event", "error", err)
		_ = delivery.Nack(false, false)
		return
	}

	c.invalidator.InvalidateGroup(ctx, event.GroupID)
	_ = delivery.Ack(false)
	slog.DebugContext(ctx, "Invalidated balances from ledger event",
		"type", event.Type,
		"group_id", event.GroupID)
}
