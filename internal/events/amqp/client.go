// Package amqp broadcasts ledger changes over RabbitMQ so every instance can drop
// its cached balances for the affected group.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
)

// RoutingKey is used for every ledger event on the exchange.
const RoutingKey = "ledger.changed"

const publishTimeout = 5 * time.Second

// Client owns one connection and channel to the broker.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queuePrefix  string

	mu sync.Mutex
}

// NewClient dials the broker and declares the durable direct exchange.
func NewClient(url, exchangeName, queuePrefix string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queuePrefix:  queuePrefix,
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return client, nil
}

var _ portssvc.LedgerEventPublisher = (*Client)(nil)

// Publish sends event as a persistent JSON message.
func (c *Client) Publish(ctx context.Context, event domain.LedgerEvent) error {
	body, err := EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		RoutingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "Published ledger event",
		"type", event.Type,
		"group_id", event.GroupID,
		"exchange", c.exchangeName)
	return nil
}

// Consume declares a queue private to this instance, binds it to the exchange and
// hands every event to a Consumer until ctx is cancelled.
func (c *Client) Consume(ctx context.Context, invalidator portssvc.BalanceInvalidatorSvc) error {
	queueName := fmt.Sprintf("%s.%s", c.queuePrefix, uuid.NewString())

	c.mu.Lock()
	_, err := c.channel.QueueDeclare(
		queueName, // name
		false,     // durable
		true,      // delete when unused
		true,      // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err == nil {
		err = c.channel.QueueBind(queueName, RoutingKey, c.exchangeName, false, nil)
	}
	var msgs <-chan amqp091.Delivery
	if err == nil {
		msgs, err = c.channel.Consume(
			queueName, // queue
			"",        // consumer
			false,     // auto-ack
			true,      // exclusive
			false,     // no-local
			false,     // no-wait
			nil,       // args
		)
	}
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("subscribe to ledger events: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming ledger events", "queue", queueName)
	return NewConsumer(invalidator).Run(ctx, msgs)
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// EncodeEvent returns the wire form of event.
func EncodeEvent(event domain.LedgerEvent) ([]byte, error) {
	return json.Marshal(event)
}

// DecodeEvent parses a wire event. Events without a group are rejected.
func DecodeEvent(data []byte) (domain.LedgerEvent, error) {
	var event domain.LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.LedgerEvent{}, err
	}
	if event.GroupID == "" {
		return domain.LedgerEvent{}, fmt.Errorf("ledger event %q has no group", event.Type)
	}
	return event, nil
}
