// Package workflow moves an order along its delivery and payment axes and notifies the customer afterwards.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderStore interface {
	UpdateStatus(ctx context.Context, orderID int64, axis domain.Axis, value string) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

type Notifier interface {
	Notify(ctx context.Context, order *domain.Order, axis domain.Axis) error
}

type Option func(*Workflow)

// WithStrictTerminal rejects moving an axis off a terminal value.
func WithStrictTerminal(strict bool) Option {
	return func(w *Workflow) { w.strict = strict }
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(w *Workflow) { w.notifyTimeout = d }
}

type flightKey struct {
	orderID int64
	axis    domain.Axis
}

type Workflow struct {
	store    OrderStore
	notifier Notifier
	logger   *zap.Logger
	tracer   trace.Tracer

	strict        bool
	notifyTimeout time.Duration

	mu       sync.Mutex
	inflight map[flightKey]struct{}
	wg       sync.WaitGroup
}

func New(store OrderStore, notifier Notifier, logger *zap.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		store:         store,
		notifier:      notifier,
		logger:        logger,
		tracer:        otel.Tracer("order_workflow"),
		notifyTimeout: 5 * time.Second,
		inflight:      make(map[flightKey]struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// RequestStatusChange persists value on axis, re-reads the order and queues the customer notification.
// A second request for the same order and axis is refused while the first is outstanding.
// Notification runs in the background; its failure is logged and never undoes the change.
func (w *Workflow) RequestStatusChange(ctx context.Context, orderID int64, axis domain.Axis, value string) (*domain.Order, error) {
	ctx, span := w.tracer.Start(ctx, "Workflow.RequestStatusChange")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("axis", string(axis)),
		attribute.String("status", value),
	)

	if !axis.Accepts(value) {
		return nil, fmt.Errorf("%w: %q is not a %s value", domain.ErrInvalidStatus, value, axis)
	}

	key := flightKey{orderID: orderID, axis: axis}
	if !w.acquire(key) {
		mylogger.Warn(
			ctx,
			w.logger,
			"Status change already in flight",
			zap.Int64("order_id", orderID),
			zap.String("axis", string(axis)),
		)
		return nil, domain.ErrStatusChangeInFlight
	}
	defer w.release(key)

	if w.strict {
		current, err := w.store.GetByID(ctx, orderID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		if old := current.Status(axis); old != value && axis.IsTerminal(old) {
			return nil, fmt.Errorf("%w: %s is already %s", domain.ErrTerminalStatus, axis, old)
		}
	}

	if err := w.store.UpdateStatus(ctx, orderID, axis, value); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	order, err := w.store.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(
			ctx,
			w.logger,
			"Failed to refresh order after status change",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	mylogger.Info(
		ctx,
		w.logger,
		"Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("axis", string(axis)),
		zap.String("status", value),
	)

	w.notify(ctx, order, axis)

	return order, nil
}

// InFlight reports whether a change for orderID on axis is outstanding.
func (w *Workflow) InFlight(orderID int64, axis domain.Axis) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.inflight[flightKey{orderID: orderID, axis: axis}]
	return ok
}

// Wait blocks until queued notifications have finished.
func (w *Workflow) Wait() {
	w.wg.Wait()
}

func (w *Workflow) notify(ctx context.Context, order *domain.Order, axis domain.Axis) {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.notifyTimeout)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()

		if err := w.notifier.Notify(notifyCtx, order, axis); err != nil {
			mylogger.Warn(
				notifyCtx,
				w.logger,
				"Status notification failed",
				zap.Int64("order_id", order.ID),
				zap.String("axis", string(axis)),
				zap.Error(fmt.Errorf("%w: %w", domain.ErrNotification, err)),
			)
		}
	}()
}

func (w *Workflow) acquire(key flightKey) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, busy := w.inflight[key]; busy {
		return false
	}
	w.inflight[key] = struct{}{}
	return true
}

func (w *Workflow) release(key flightKey) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.inflight, key)
}
