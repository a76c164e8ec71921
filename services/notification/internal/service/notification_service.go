package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	generalDomain "github.com/sakashimaa/pos-console/pkg/domain"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	outboxUtils "github.com/sakashimaa/pos-console/pkg/outbox/utils"
	"github.com/sakashimaa/pos-console/services/notification/internal/domain"
	"github.com/sakashimaa/pos-console/services/notification/internal/infrastructure/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type NotificationService struct {
	emailSender email.Sender
	logger      *zap.Logger
	pool        *pgxpool.Pool
	tracer      trace.Tracer
}

func NewNotificationService(emailSender email.Sender, logger *zap.Logger, pool *pgxpool.Pool) *NotificationService {
	return &NotificationService{
		emailSender: emailSender,
		logger:      logger,
		pool:        pool,
		tracer:      otel.Tracer("notification-service"),
	}
}

// HandleOrderStatusNotification delivers the rendered e-mail once per notification id.
func (s *NotificationService) HandleOrderStatusNotification(ctx context.Context, event generalDomain.OrderStatusNotification) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderStatusNotification")
	defer span.End()

	span.SetAttributes(
		attribute.String("notification_id", event.NotificationID),
		attribute.Int64("order_id", event.OrderID),
		attribute.String("status_label", event.StatusLabel),
	)

	msg, err := domain.EmailFromNotification(event)
	if errors.Is(err, domain.ErrNoRecipient) {
		mylogger.Warn(
			ctx,
			s.logger,
			"Notification without recipient dropped",
			zap.String("notification_id", event.NotificationID),
			zap.Int64("order_id", event.OrderID),
		)
		return nil
	}

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, event.NotificationID, func(ctx context.Context) error {
		return s.emailSender.Send(ctx, msg)
	})
}
