package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sakashimaa/pos-console/pkg/cart"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CartView struct {
	SessionID string      `json:"session_id"`
	Lines     []cart.Line `json:"lines"`
	Totals    cart.Totals `json:"totals"`
}

func newCartView(sessionID string, c *cart.Cart) *CartView {
	return &CartView{
		SessionID: sessionID,
		Lines:     c.Lines(),
		Totals:    c.Totals(),
	}
}

// CartService owns draft carts. Every mutation of one session runs under that session's lock.
type CartService interface {
	Create(ctx context.Context) (*CartView, error)
	Get(ctx context.Context, sessionID string) (*CartView, error)
	AddItem(ctx context.Context, sessionID string, productID int64) (*CartView, error)
	SetQuantity(ctx context.Context, sessionID string, productID int64, raw string) (*CartView, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) (*CartView, error)
	Drop(ctx context.Context, sessionID string) error
	Checkout(ctx context.Context, sessionID string, in CheckoutInput) (*domain.Order, error)
}

type cartService struct {
	sessions repository.CartSessionRepository
	catalog  CatalogService
	orders   OrderService
	locks    *keyedMutex
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewCartService(
	sessions repository.CartSessionRepository,
	catalog CatalogService,
	orders OrderService,
	logger *zap.Logger,
) CartService {
	return &cartService{
		sessions: sessions,
		catalog:  catalog,
		orders:   orders,
		locks:    newKeyedMutex(),
		logger:   logger,
		tracer:   otel.Tracer("cart_service"),
	}
}

func (s *cartService) Create(ctx context.Context) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Create")
	defer span.End()

	sessionID := uuid.NewString()
	c := cart.New()

	if err := s.sessions.Save(ctx, sessionID, c); err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, s.logger, "Failed to create cart session", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.String("session_id", sessionID))
	mylogger.Debug(ctx, s.logger, "Cart session created", zap.String("session_id", sessionID))

	return newCartView(sessionID, c), nil
}

func (s *cartService) Get(ctx context.Context, sessionID string) (*CartView, error) {
	c, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, s.sessionErr(err)
	}

	return newCartView(sessionID, c), nil
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, productID int64) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.Int64("product_id", productID),
	)

	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		if _, ok := c.Line(productID); ok {
			c.Add(cart.Snapshot{ProductID: productID})
			return nil
		}

		product, err := s.catalog.FindByID(ctx, productID)
		if err != nil {
			return err
		}

		c.Add(product.Snapshot())
		return nil
	})
}

// SetQuantity takes the raw text typed into the quantity field.
func (s *cartService) SetQuantity(ctx context.Context, sessionID string, productID int64, raw string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.SetQuantity")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.Int64("product_id", productID),
	)

	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.SetQuantity(productID, raw)
	})
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (*CartView, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		c.Remove(productID)
		return nil
	})
}

func (s *cartService) Drop(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	return s.sessions.Delete(ctx, sessionID)
}

// Checkout submits the session's cart. The session is deleted only after the order is persisted.
func (s *cartService) Checkout(ctx context.Context, sessionID string, in CheckoutInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Checkout")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, s.sessionErr(err)
	}

	order, err := s.orders.Checkout(ctx, c, in)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Failed to clear cart session after checkout",
			zap.String("session_id", sessionID),
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
	}

	return order, nil
}

// mutate applies fn to the stored cart and saves it. When fn fails the stored cart is left untouched.
func (s *cartService) mutate(ctx context.Context, sessionID string, fn func(c *cart.Cart) error) (*CartView, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, s.sessionErr(err)
	}

	if err := fn(c); err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, sessionID, c); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to save cart session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	return newCartView(sessionID, c), nil
}

func (s *cartService) sessionErr(err error) error {
	if errors.Is(err, repository.ErrSessionNotFound) {
		return domain.ErrCartNotFound
	}
	return err
}
