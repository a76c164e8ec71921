package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	generalDomain "github.com/sakashimaa/pos-console/pkg/domain"
	"github.com/sakashimaa/pos-console/pkg/kafka"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	outboxDomain "github.com/sakashimaa/pos-console/pkg/outbox/domain"
	"go.uber.org/zap"
)

type NotificationHandler interface {
	HandleOrderStatusNotification(ctx context.Context, event generalDomain.OrderStatusNotification) error
}

type Consumer struct {
	service NotificationHandler
	logger  *zap.Logger
}

func NewConsumer(service NotificationHandler, logger *zap.Logger) *Consumer {
	return &Consumer{
		service: service,
		logger:  logger,
	}
}

func (c *Consumer) Start(ctx context.Context, brokers []string, groupID, topic string) error {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		groupID,
		[]string{topic},
		c.processMessage,
		c.logger,
	)

	return consumerGroup.Run(ctx)
}

// processMessage returns an error only for failures worth redelivering; malformed messages are logged and skipped.
func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	mylogger.Info(
		ctx,
		c.logger,
		"Processing message",
		zap.String("topic", msg.Topic),
	)

	var wrapper outboxDomain.Envelope
	if err := json.Unmarshal(msg.Value, &wrapper); err != nil {
		mylogger.Error(ctx, c.logger, "Error unmarshalling wrapper", zap.Error(err))
		return nil
	}

	switch wrapper.Event {
	case generalDomain.EventOrderStatusNotification:
		var event generalDomain.OrderStatusNotification
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			mylogger.Error(ctx, c.logger, "Error parsing event", zap.String("event", wrapper.Event), zap.Error(err))
			return nil
		}

		if err := c.service.HandleOrderStatusNotification(ctx, event); err != nil {
			mylogger.Error(
				ctx,
				c.logger,
				"Error processing order status notification",
				zap.String("notification_id", event.NotificationID),
				zap.Error(err),
			)
			return err
		}
	default:
		mylogger.Debug(ctx, c.logger, "Ignored event type", zap.String("event", wrapper.Event))
	}

	return nil
}
