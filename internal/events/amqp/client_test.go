package amqp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

type recordingInvalidator struct {
	mu     sync.Mutex
	groups []string
}

func (r *recordingInvalidator) InvalidateGroup(_ context.Context, groupID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = append(r.groups, groupID)
}

func (r *recordingInvalidator) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.groups...)
}

type fakeAcknowledger struct {
	acked, nacked, requeued int
}

func (f *fakeAcknowledger) Ack(uint64, bool) error { f.acked++; return nil }
func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked++
	if requeue {
		f.requeued++
	}
	return nil
}
func (f *fakeAcknowledger) Reject(uint64, bool) error { return nil }

func TestEventRoundTrip(t *testing.T) {
	event := domain.LedgerEvent{
		Type:         domain.EventSettlementRecorded,
		GroupID:      "g1",
		SettlementID: "s1",
		OccurredAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := EncodeEvent(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"settlement.recorded","groupId":"g1","settlementId":"s1","occurredAt":"2024-05-01T12:00:00Z"}`, string(body))

	decoded, err := DecodeEvent(body)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestDecodeEvent_Rejects(t *testing.T) {
	_, err := DecodeEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"type":"expense.changed"}`))
	assert.ErrorContains(t, err, "no group")
}

func TestConsumer_Handle(t *testing.T) {
	inv := &recordingInvalidator{}
	consumer := NewConsumer(inv)

	ack := &fakeAcknowledger{}
	consumer.Handle(context.Background(), amqp091.Delivery{
		Acknowledger: ack,
		Body:         []byte(`{"type":"expense.changed","groupId":"g7"}`),
	})
	assert.Equal(t, []string{"g7"}, inv.invalidated())
	assert.Equal(t, 1, ack.acked)

	bad := &fakeAcknowledger{}
	consumer.Handle(context.Background(), amqp091.Delivery{Acknowledger: bad, Body: []byte(`{}`)})
	assert.Equal(t, 1, bad.nacked)
	assert.Equal(t, 0, bad.requeued)
	assert.Len(t, inv.invalidated(), 1)
}

func TestConsumer_RunStops(t *testing.T) {
	inv := &recordingInvalidator{}
	consumer := NewConsumer(inv)

	t.Run("closed channel", func(t *testing.T) {
		deliveries := make(chan amqp091.Delivery, 1)
		deliveries <- amqp091.Delivery{Acknowledger: &fakeAcknowledger{}, Body: []byte(`{"type":"settlement.recorded","groupId":"g1"}`)}
		close(deliveries)

		err := consumer.Run(context.Background(), deliveries)
		assert.ErrorIs(t, err, ErrDeliveriesClosed)
		assert.Equal(t, []string{"g1"}, inv.invalidated())
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := consumer.Run(ctx, make(chan amqp091.Delivery))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
