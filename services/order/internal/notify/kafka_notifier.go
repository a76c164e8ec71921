package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	generalDomain "github.com/sakashimaa/pos-console/pkg/domain"
	"github.com/sakashimaa/pos-console/pkg/kafka"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	outboxDomain "github.com/sakashimaa/pos-console/pkg/outbox/domain"
	"github.com/sakashimaa/pos-console/pkg/utils"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// KafkaNotifier hands rendered status e-mails to the notification service over Kafka.
type KafkaNotifier struct {
	producer kafka.Producer
	topic    string
	shop     Shop
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewKafkaNotifier(producer kafka.Producer, topic string, shop Shop, logger *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		topic:    topic,
		shop:     shop,
		breaker:  utils.NewBreaker("notification-producer", logger),
		logger:   logger,
		tracer:   otel.Tracer("order_notifier"),
		now:      time.Now,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, order *domain.Order, axis domain.Axis) error {
	ctx, span := n.tracer.Start(ctx, "KafkaNotifier.Notify")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", order.ID),
		attribute.String("axis", string(axis)),
	)

	to := order.ContactEmail()
	if to == "" {
		mylogger.Info(
			ctx,
			n.logger,
			"Order has no contact e-mail, skipping notification",
			zap.Int64("order_id", order.ID),
		)
		return nil
	}

	html, err := RenderStatus(n.shop, order, axis)
	if err != nil {
		span.RecordError(err)
		return err
	}

	payload := generalDomain.OrderStatusNotification{
		NotificationID: uuid.NewString(),
		OrderID:        order.ID,
		To:             to,
		ReplyTo:        n.shop.ReplyTo,
		Subject:        statusSubject,
		HTMLContent:    html,
		StatusLabel:    domain.StatusLabel(order.Status(axis)),
		CreatedAt:      n.now().UTC(),
	}

	msg, err := outboxDomain.EncodeEnvelope(generalDomain.EventOrderStatusNotification, payload)
	if err != nil {
		span.RecordError(err)
		return err
	}

	_, err = utils.ExecuteWithBreaker(n.breaker, func() (struct{}, error) {
		return struct{}{}, n.producer.ProduceMessage(ctx, n.topic, strconv.FormatInt(order.ID, 10), json.RawMessage(msg))
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	mylogger.Info(
		ctx,
		n.logger,
		"Status notification queued",
		zap.Int64("order_id", order.ID),
		zap.String("notification_id", payload.NotificationID),
	)

	return nil
}
