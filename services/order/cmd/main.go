package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sakashimaa/pos-console/pkg/config"
	"github.com/sakashimaa/pos-console/pkg/db"
	"github.com/sakashimaa/pos-console/pkg/kafka"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	outboxRepository "github.com/sakashimaa/pos-console/pkg/outbox/repository"
	"github.com/sakashimaa/pos-console/pkg/outbox/worker"
	"github.com/sakashimaa/pos-console/pkg/utils"
	"github.com/sakashimaa/pos-console/services/order/internal/notify"
	"github.com/sakashimaa/pos-console/services/order/internal/repository"
	"github.com/sakashimaa/pos-console/services/order/internal/service"
	"github.com/sakashimaa/pos-console/services/order/internal/transport/http"
	"github.com/sakashimaa/pos-console/services/order/internal/transport/http/handler"
	"github.com/sakashimaa/pos-console/services/order/internal/workflow"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.LoggerConfig())
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	tp, err := utils.InitTracer(ctx, "order-service", cfg.Env)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}

	pool, err := db.NewPostgresDB(ctx, cfg.Postgres.URL, db.DefaultPoolOptions())
	if err != nil {
		log.Fatalf("failed to create pool: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	orderRepo := repository.NewOrderRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	sessionRepo := repository.NewCartSessionRepository(rdb, cfg.Cart.SessionTTL)
	outboxRepo := outboxRepository.NewOutboxRepository(logger)

	catalogService := service.NewCachedCatalogService(
		service.NewCatalogService(productRepo, logger),
		rdb,
		cfg.Catalog.CacheTTL,
		logger,
	)
	orderService := service.NewOrderService(pool, logger, orderRepo, couponRepo, customerRepo, outboxRepo, cfg.Kafka.OrderTopic)
	cartService := service.NewCartService(sessionRepo, catalogService, orderService, logger)

	notifier := notify.NewKafkaNotifier(kafkaProducer, cfg.Kafka.NotificationTopic, notify.Shop{
		Name:    cfg.Notification.ShopName,
		Link:    cfg.Notification.ShopLink,
		ReplyTo: cfg.Notification.ReplyTo,
	}, logger)

	statusWorkflow := workflow.New(
		orderService,
		notifier,
		logger,
		workflow.WithStrictTerminal(cfg.Workflow.StrictTerminal),
		workflow.WithNotifyTimeout(cfg.Workflow.NotifyTimeout),
	)

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepo, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout,
	})

	app.Use(otelfiber.Middleware())

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Limiter.RPC,
		Expiration: cfg.Limiter.TTL,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	}))

	handlers := &http.Handlers{
		Product: handler.NewProductHandler(catalogService, logger, cfg.HTTP.Timeout),
		Cart:    handler.NewCartHandler(cartService, logger, cfg.HTTP.Timeout),
		Order:   handler.NewOrderHandler(orderService, statusWorkflow, logger, cfg.HTTP.Timeout),
	}

	http.RegisterRoutes(app, handlers, cfg.Auth.AccessSecret)

	go func() {
		mylogger.Info(ctx, logger, "HTTP server listening", zap.String("port", cfg.HTTP.Port))
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening on HTTP port %v: %v\n", cfg.HTTP.Port, err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, exit := context.WithTimeout(context.Background(), time.Second*5)
	defer exit()

	mylogger.Info(
		shutdownCtx,
		logger,
		"Shutting down order server",
	)

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		mylogger.Warn(shutdownCtx, logger, "Error shutting down HTTP app", zap.Error(err))
	}

	statusWorkflow.Wait()

	if err := kafkaProducer.Close(); err != nil {
		mylogger.Warn(shutdownCtx, logger, "Error closing kafka producer", zap.Error(err))
	}

	if err := rdb.Close(); err != nil {
		mylogger.Warn(shutdownCtx, logger, "Error closing redis client", zap.Error(err))
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		mylogger.Warn(
			shutdownCtx,
			logger,
			"Failed to shut down telemetry",
			zap.Error(err),
		)
	} else {
		mylogger.Info(
			shutdownCtx,
			logger,
			"Successfully down telemetry",
		)
	}

	pool.Close()
}
