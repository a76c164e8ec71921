package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/pos-console/pkg/cart"
	generalDomain "github.com/sakashimaa/pos-console/pkg/domain"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	outboxDomain "github.com/sakashimaa/pos-console/pkg/outbox/domain"
	"github.com/sakashimaa/pos-console/pkg/outbox/worker"
	"github.com/sakashimaa/pos-console/pkg/pricing"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CheckoutInput struct {
	ReceivedMoney int64
	CouponName    string
	CustomerID    *int64
	Phone         string
	Address       domain.Address
	CreatedBy     int64
}

type OrderService interface {
	Checkout(ctx context.Context, c *cart.Cart, in CheckoutInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, axis domain.Axis, value string) error
}

type orderService struct {
	pool         *pgxpool.Pool
	logger       *zap.Logger
	orderRepo    repository.OrderRepository
	couponRepo   repository.CouponRepository
	customerRepo repository.CustomerRepository
	outboxRepo   worker.OutboxRepository
	orderTopic   string
	now          func() time.Time
	tracer       trace.Tracer
}

func NewOrderService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	orderRepo repository.OrderRepository,
	couponRepo repository.CouponRepository,
	customerRepo repository.CustomerRepository,
	outboxRepo worker.OutboxRepository,
	orderTopic string,
) OrderService {
	return &orderService{
		pool:         pool,
		logger:       logger,
		orderRepo:    orderRepo,
		couponRepo:   couponRepo,
		customerRepo: customerRepo,
		outboxRepo:   outboxRepo,
		orderTopic:   orderTopic,
		now:          time.Now,
		tracer:       otel.Tracer("order_service"),
	}
}

// Checkout freezes the cart into a persisted order. An empty cart is rejected before any database work.
func (s *orderService) Checkout(ctx context.Context, c *cart.Cart, in CheckoutInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Checkout")
	defer span.End()

	if c.IsEmpty() || c.Totals().TotalPrice == 0 {
		return nil, domain.ErrEmptyOrder
	}

	order := &domain.Order{
		ReceivedMoney:  in.ReceivedMoney,
		DeliveryStatus: domain.DeliveryPending,
		PaymentStatus:  domain.PaymentUnpaid,
		CustomerID:     in.CustomerID,
		Phone:          in.Phone,
		Address:        in.Address,
	}

	coupon := pricing.None()
	if in.CouponName != "" {
		found, err := s.couponRepo.GetByName(ctx, in.CouponName)
		if err != nil {
			return nil, lookupErr(err, repository.ErrCouponNotFound)
		}
		if err := found.Check(c.Totals().TotalPrice, s.now()); err != nil {
			return nil, err
		}

		coupon = pricing.PercentInt(found.DiscountPercent)
		order.Coupon = found.Snapshot()
	}

	if in.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *in.CustomerID)
		if err != nil {
			return nil, lookupErr(err, repository.ErrCustomerNotFound)
		}
		order.Customer = customer
		if order.Phone == "" {
			order.Phone = customer.Phone
		}
	}

	totals := c.TotalsWithCoupon(coupon)
	order.TotalPrice = totals.TotalPrice
	order.PriceDiscounted = totals.PriceDiscounted
	order.IntoMoney = totals.IntoMoney
	order.ExchangeMoney = cart.Change(in.ReceivedMoney, totals.IntoMoney)

	for _, l := range c.Lines() {
		order.Details = append(order.Details, domain.OrderDetail{
			ProductID:       l.ProductID,
			Code:            l.Code,
			Name:            l.Name,
			Image:           l.Image,
			Price:           l.Price,
			Discount:        l.Discount,
			PriceDiscounted: l.PriceDiscounted,
			Quantity:        int32(l.Quantity),
		})
	}

	span.SetAttributes(
		attribute.Int64("total_price", order.TotalPrice),
		attribute.Int64("into_money", order.IntoMoney),
		attribute.Int("details_count", len(order.Details)),
	)

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.orderRepo.CreateOrder(ctx, tx, order, in.CreatedBy); err != nil {
			return err
		}

		return s.emit(ctx, tx, order.ID, generalDomain.EventOrderCreated, order.ToCreatedEvent())
	})
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			s.logger,
			"Failed to create order",
			zap.Error(err),
		)

		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("into_money", order.IntoMoney),
	)

	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", id))

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return order, nil
}

// UpdateStatus persists one axis and records an OrderStatusChanged event in the same transaction.
func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, axis domain.Axis, value string) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("axis", string(axis)),
		attribute.String("status", value),
	)

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.orderRepo.UpdateStatus(ctx, tx, orderID, axis, value); err != nil {
			return err
		}

		return s.emit(ctx, tx, orderID, generalDomain.EventOrderStatusChanged, generalDomain.OrderStatusChangedEvent{
			OrderID:   orderID,
			Axis:      string(axis),
			Status:    value,
			ChangedAt: s.now().UTC(),
		})
	})
	if err != nil {
		span.RecordError(err)

		if errors.Is(err, repository.ErrOrderNotFound) {
			mylogger.Warn(ctx, s.logger, "Order not found", zap.Int64("order_id", orderID))
		} else {
			mylogger.Error(ctx, s.logger, "Failed to update order status", zap.Int64("order_id", orderID), zap.Error(err))
		}

		return err
	}

	return nil
}

func (s *orderService) emit(ctx context.Context, tx pgx.Tx, orderID int64, eventType string, payload any) error {
	event, err := outboxDomain.NewOutboxEvent("Order", strconv.FormatInt(orderID, 10), eventType, s.orderTopic, payload)
	if err != nil {
		return err
	}

	return s.outboxRepo.SaveOutboxEvent(ctx, tx, event)
}

func (s *orderService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(
				shutdownCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// lookupErr passes notFound through and reports anything else as a persistence failure.
func lookupErr(err, notFound error) error {
	if errors.Is(err, notFound) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}
