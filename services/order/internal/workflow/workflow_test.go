package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

type fakeStore struct {
	mu        sync.Mutex
	orders    map[int64]*domain.Order
	updateErr error
	getErr    error
	block     chan struct{}
	entered   chan struct{}
	updates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[int64]*domain.Order{
		1: {
			ID:             1,
			DeliveryStatus: domain.DeliveryPending,
			PaymentStatus:  domain.PaymentUnpaid,
			Customer:       &domain.Customer{ID: 7, Email: "an@example.com"},
		},
	}}
}

func (s *fakeStore) UpdateStatus(_ context.Context, orderID int64, axis domain.Axis, value string) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}

	o, ok := s.orders[orderID]
	if !ok {
		return errors.New("order not found")
	}
	switch axis {
	case domain.AxisDelivery:
		o.DeliveryStatus = domain.DeliveryStatus(value)
	case domain.AxisPayment:
		o.PaymentStatus = domain.PaymentStatus(value)
	}
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	cp := *o
	return &cp, nil
}

type notice struct {
	orderID int64
	axis    domain.Axis
	label   string
}

type fakeNotifier struct {
	mu      sync.Mutex
	err     error
	notices []notice
}

func (n *fakeNotifier) Notify(_ context.Context, order *domain.Order, axis domain.Axis) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notices = append(n.notices, notice{
		orderID: order.ID,
		axis:    axis,
		label:   domain.StatusLabel(order.Status(axis)),
	})
	return n.err
}

func (n *fakeNotifier) sent() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notice(nil), n.notices...)
}

func TestRequestStatusChange_Delivered(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	w := New(store, notifier, zap.NewNop())

	order, err := w.RequestStatusChange(context.Background(), 1, domain.AxisDelivery, "delivered")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryDelivered, order.DeliveryStatus)
	assert.Equal(t, domain.PaymentUnpaid, order.PaymentStatus)

	w.Wait()

	sent := notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notice{orderID: 1, axis: domain.AxisDelivery, label: "received"}, sent[0])
	assert.False(t, w.InFlight(1, domain.AxisDelivery))
}

func TestRequestStatusChange_PersistenceFailure(t *testing.T) {
	store := newFakeStore()
	store.updateErr = errors.New("connection reset")
	notifier := &fakeNotifier{}
	w := New(store, notifier, zap.NewNop())

	order, err := w.RequestStatusChange(context.Background(), 1, domain.AxisPayment, "paid")
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Nil(t, order)

	w.Wait()
	assert.Empty(t, notifier.sent())
	assert.False(t, w.InFlight(1, domain.AxisPayment))

	store.updateErr = nil
	current, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentUnpaid, current.PaymentStatus)
}

func TestRequestStatusChange_RefreshFailureSkipsNotify(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("timeout")
	notifier := &fakeNotifier{}
	w := New(store, notifier, zap.NewNop())

	_, err := w.RequestStatusChange(context.Background(), 1, domain.AxisPayment, "paid")
	require.ErrorIs(t, err, domain.ErrPersistence)

	w.Wait()
	assert.Empty(t, notifier.sent())
	assert.Equal(t, 1, store.updates)
}

func TestRequestStatusChange_InvalidValue(t *testing.T) {
	store := newFakeStore()
	w := New(store, &fakeNotifier{}, zap.NewNop())

	_, err := w.RequestStatusChange(context.Background(), 1, domain.AxisPayment, "delivered")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Zero(t, store.updates)
}

func TestRequestStatusChange_SameAxisInFlight(t *testing.T) {
	store := newFakeStore()
	store.block = make(chan struct{})
	store.entered = make(chan struct{}, 2)
	notifier := &fakeNotifier{}
	w := New(store, notifier, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := w.RequestStatusChange(context.Background(), 1, domain.AxisDelivery, "delivered")
		done <- err
	}()

	<-store.entered
	assert.True(t, w.InFlight(1, domain.AxisDelivery))

	_, err := w.RequestStatusChange(context.Background(), 1, domain.AxisDelivery, "aborted")
	require.ErrorIs(t, err, domain.ErrStatusChangeInFlight)

	otherAxis := make(chan error, 1)
	go func() {
		_, err := w.RequestStatusChange(context.Background(), 1, domain.AxisPayment, "paid")
		otherAxis <- err
	}()
	<-store.entered

	close(store.block)
	require.NoError(t, <-done)
	require.NoError(t, <-otherAxis)

	w.Wait()
	assert.Len(t, notifier.sent(), 2)
	assert.False(t, w.InFlight(1, domain.AxisDelivery))
	assert.False(t, w.InFlight(1, domain.AxisPayment))

	current, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryDelivered, current.DeliveryStatus)
	assert.Equal(t, domain.PaymentPaid, current.PaymentStatus)
}

func TestRequestStatusChange_TerminalPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("permissive", func(t *testing.T) {
		store := newFakeStore()
		store.orders[1].DeliveryStatus = domain.DeliveryDelivered
		w := New(store, &fakeNotifier{}, zap.NewNop())

		order, err := w.RequestStatusChange(ctx, 1, domain.AxisDelivery, "pending")
		require.NoError(t, err)
		assert.Equal(t, domain.DeliveryPending, order.DeliveryStatus)
		w.Wait()
	})

	t.Run("strict", func(t *testing.T) {
		store := newFakeStore()
		store.orders[1].DeliveryStatus = domain.DeliveryAborted
		w := New(store, &fakeNotifier{}, zap.NewNop(), WithStrictTerminal(true))

		_, err := w.RequestStatusChange(ctx, 1, domain.AxisDelivery, "delivered")
		require.ErrorIs(t, err, domain.ErrTerminalStatus)
		assert.Zero(t, store.updates)

		_, err = w.RequestStatusChange(ctx, 1, domain.AxisDelivery, "aborted")
		require.NoError(t, err)
		w.Wait()
	})
}

func TestRequestStatusChange_NotifierFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := newFakeStore()
	notifier := &fakeNotifier{err: errors.New("broker down")}
	w := New(store, notifier, zap.New(core), WithNotifyTimeout(time.Second))

	order, err := w.RequestStatusChange(context.Background(), 1, domain.AxisPayment, "paid")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)

	w.Wait()

	entries := logs.FilterMessage("Status notification failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], domain.ErrNotification.Error())
}
