package service

import (
	"context"
	"sync"
	"testing"

	"github.com/sakashimaa/pos-console/pkg/cart"
	"github.com/sakashimaa/pos-console/pkg/pricing"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memSessions struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func newMemSessions() *memSessions {
	return &memSessions{carts: make(map[string][]byte)}
}

func (m *memSessions) Save(_ context.Context, id string, c *cart.Cart) error {
	data, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[id] = data
	return nil
}

func (m *memSessions) Load(_ context.Context, id string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.carts[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	c := cart.New()
	if err := c.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, id)
	return nil
}

type stubCatalog struct {
	CatalogService
	products map[int64]*domain.Product
	lookups  int
}

func (s *stubCatalog) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	s.lookups++
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

type stubOrders struct {
	OrderService
	err      error
	received *cart.Cart
}

func (s *stubOrders) Checkout(_ context.Context, c *cart.Cart, in CheckoutInput) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.received = c
	t := c.Totals()
	return &domain.Order{ID: 1, TotalPrice: t.TotalPrice, IntoMoney: t.IntoMoney, ReceivedMoney: in.ReceivedMoney}, nil
}

func newTestCartService() (*cartService, *memSessions, *stubCatalog, *stubOrders) {
	sessions := newMemSessions()
	catalog := &stubCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Code: "SP01", Name: "Rau muống", Price: 100, Discount: pricing.PercentInt(10), Images: []string{"a.png"}},
		2: {ID: 2, Code: "SP02", Name: "Cà chua", Price: 50},
	}}
	orders := &stubOrders{}

	svc := NewCartService(sessions, catalog, orders, zap.NewNop()).(*cartService)
	return svc, sessions, catalog, orders
}

func TestCartService_AddAndTotals(t *testing.T) {
	svc, _, catalog, _ := newTestCartService()
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, view.SessionID)
	assert.Empty(t, view.Lines)

	_, err = svc.AddItem(ctx, view.SessionID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, view.SessionID, 2)
	require.NoError(t, err)
	view, err = svc.AddItem(ctx, view.SessionID, 1)
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Equal(t, int64(1), view.Lines[0].ProductID)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.Equal(t, int64(90), view.Lines[0].PriceDiscounted)
	assert.Equal(t, "a.png", view.Lines[0].Image)

	assert.Equal(t, int64(250), view.Totals.TotalPrice)
	assert.Equal(t, int64(230), view.Totals.IntoMoney)
	assert.Equal(t, 2, catalog.lookups, "repeat add reuses the stored snapshot")
}

func TestCartService_SetQuantityRejectsBadInput(t *testing.T) {
	svc, _, _, _ := newTestCartService()
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, view.SessionID, 2)
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, view.SessionID, 2, "")
	assert.ErrorIs(t, err, cart.ErrQuantityPending)

	_, err = svc.SetQuantity(ctx, view.SessionID, 2, "abc")
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	_, err = svc.SetQuantity(ctx, view.SessionID, 2, "0")
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	view, err = svc.Get(ctx, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Lines[0].Quantity)

	view, err = svc.SetQuantity(ctx, view.SessionID, 2, " 4 ")
	require.NoError(t, err)
	assert.Equal(t, 4, view.Lines[0].Quantity)
	assert.Equal(t, int64(200), view.Totals.TotalPrice)
}

func TestCartService_RemoveIsNoopWhenAbsent(t *testing.T) {
	svc, _, _, _ := newTestCartService()
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, view.SessionID, 1)
	require.NoError(t, err)

	view, err = svc.RemoveItem(ctx, view.SessionID, 99)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)

	view, err = svc.RemoveItem(ctx, view.SessionID, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCartService_UnknownSessionAndProduct(t *testing.T) {
	svc, _, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	view, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, view.SessionID, 42)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCartService_CheckoutClearsSession(t *testing.T) {
	svc, sessions, _, orders := newTestCartService()
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, view.SessionID, 2)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, view.SessionID, CheckoutInput{ReceivedMoney: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(50), order.IntoMoney)
	assert.Equal(t, 1, orders.received.Len())

	_, err = sessions.Load(ctx, view.SessionID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestCartService_FailedCheckoutKeepsSession(t *testing.T) {
	svc, sessions, _, orders := newTestCartService()
	ctx := context.Background()
	orders.err = domain.ErrEmptyOrder

	view, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, view.SessionID, CheckoutInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	_, err = sessions.Load(ctx, view.SessionID)
	assert.NoError(t, err)
}

func TestCartService_ConcurrentAddsAreSerialized(t *testing.T) {
	svc, _, _, _ := newTestCartService()
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, view.SessionID, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AddItem(ctx, view.SessionID, 2)
		}()
	}
	wg.Wait()

	view, err = svc.Get(ctx, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 21, view.Lines[0].Quantity)
	assert.Empty(t, svc.locks.locks)
}
