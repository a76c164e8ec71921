package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sakashimaa/pos-console/pkg/config"
	"github.com/sakashimaa/pos-console/pkg/db"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/pkg/utils"
	"github.com/sakashimaa/pos-console/services/notification/internal/infrastructure/email"
	"github.com/sakashimaa/pos-console/services/notification/internal/service"
	"github.com/sakashimaa/pos-console/services/notification/transport/kafka"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := utils.InitTracer(ctx, "notification-service", cfg.Env)
	if err != nil {
		log.Fatalf("Error starting telemetry: %v", err)
	}

	logger, err := config.NewLogger(cfg.LoggerConfig())
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := db.NewPostgresDB(ctx, cfg.Postgres.URL, db.DefaultPoolOptions())
	if err != nil {
		log.Fatalf("error creating postgres db: %v", err)
	}

	emailSender := email.NewSMTPSender(cfg.SMTP, logger)
	notificationService := service.NewNotificationService(emailSender, logger, pool)

	consumer := kafka.NewConsumer(notificationService, logger)

	mylogger.Info(
		ctx,
		logger,
		"Notification service started",
		zap.String("topic", cfg.Kafka.NotificationTopic),
		zap.String("group_id", cfg.Kafka.GroupID),
	)

	if err := consumer.Start(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationTopic); err != nil {
		mylogger.Error(ctx, logger, "Consumer stopped", zap.Error(err))
		stop()
	}

	<-ctx.Done()

	shutdownCtx, exit := context.WithTimeout(context.Background(), 5*time.Second)
	defer exit()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		mylogger.Warn(shutdownCtx, logger, "Error closing telemetry", zap.Error(err))
	}

	pool.Close()
	mylogger.Info(shutdownCtx, logger, "Postgres pool closed")
}
