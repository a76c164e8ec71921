package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	generalDomain "github.com/sakashimaa/pos-console/pkg/domain"
	outboxDomain "github.com/sakashimaa/pos-console/pkg/outbox/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeHandler struct {
	err    error
	events []generalDomain.OrderStatusNotification
}

func (h *fakeHandler) HandleOrderStatusNotification(_ context.Context, event generalDomain.OrderStatusNotification) error {
	h.events = append(h.events, event)
	return h.err
}

func message(t *testing.T, event string, payload any) *sarama.ConsumerMessage {
	t.Helper()

	body, err := outboxDomain.EncodeEnvelope(event, payload)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "notification_events", Value: body}
}

func TestProcessMessage_Dispatches(t *testing.T) {
	h := &fakeHandler{}
	c := NewConsumer(h, zap.NewNop())

	msg := message(t, generalDomain.EventOrderStatusNotification, generalDomain.OrderStatusNotification{
		NotificationID: "n-1",
		OrderID:        7,
		To:             "an@example.com",
		Subject:        "Order status updated",
	})

	require.NoError(t, c.processMessage(context.Background(), msg))
	require.Len(t, h.events, 1)
	assert.Equal(t, "n-1", h.events[0].NotificationID)
	assert.Equal(t, int64(7), h.events[0].OrderID)
}

func TestProcessMessage_HandlerErrorIsReturned(t *testing.T) {
	h := &fakeHandler{err: errors.New("smtp down")}
	c := NewConsumer(h, zap.NewNop())

	msg := message(t, generalDomain.EventOrderStatusNotification, generalDomain.OrderStatusNotification{NotificationID: "n-2", To: "x@example.com"})
	assert.Error(t, c.processMessage(context.Background(), msg))
}

func TestProcessMessage_SkipsUnknownAndMalformed(t *testing.T) {
	h := &fakeHandler{}
	c := NewConsumer(h, zap.NewNop())

	assert.NoError(t, c.processMessage(context.Background(), message(t, generalDomain.EventOrderCreated, map[string]any{"order_id": 1})))
	assert.NoError(t, c.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")}))
	assert.NoError(t, c.processMessage(context.Background(), &sarama.ConsumerMessage{
		Value: []byte(`{"event":"OrderStatusNotification","payload":"oops"}`),
	}))
	assert.Empty(t, h.events)
}
