package tests

import (
	"strconv"
	"time"

	"github.com/sakashimaa/pos-console/pkg/cart"
	generalDomain "github.com/sakashimaa/pos-console/pkg/domain"
	"github.com/sakashimaa/pos-console/pkg/pricing"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/repository"
	"github.com/sakashimaa/pos-console/services/order/internal/service"
)

func (s *IntegrationTestSuite) TestCheckout_Success() {
	rau := s.seedProduct("RAU01", "Rau muống", 100, pricing.None())
	ca := s.seedProduct("CA01", "Cà chua", 50, pricing.PercentInt(10))
	customerID := s.seedCustomer("Nguyễn Văn An", "an@example.com")

	view, err := s.CartService.Create(s.Ctx)
	s.Require().NoError(err)
	sessionID := view.SessionID

	_, err = s.CartService.AddItem(s.Ctx, sessionID, rau)
	s.Require().NoError(err)
	_, err = s.CartService.AddItem(s.Ctx, sessionID, rau)
	s.Require().NoError(err)
	view, err = s.CartService.AddItem(s.Ctx, sessionID, ca)
	s.Require().NoError(err)

	s.Require().Equal(int64(250), view.Totals.TotalPrice)
	s.Require().Equal(int64(245), view.Totals.IntoMoney)

	order, err := s.CartService.Checkout(s.Ctx, sessionID, service.CheckoutInput{
		ReceivedMoney: 300,
		CustomerID:    &customerID,
		Address:       domain.Address{Street: "12 Lê Lợi", Province: "Hà Nội"},
		CreatedBy:     1,
	})
	s.Require().NoError(err)
	s.Require().NotZero(order.ID)
	s.Require().False(order.CreatedAt.IsZero())
	s.Require().Equal(int64(250), order.TotalPrice)
	s.Require().Equal(int64(245), order.IntoMoney)
	s.Require().Equal(int64(55), order.ExchangeMoney)
	s.Require().Equal(domain.DeliveryPending, order.DeliveryStatus)
	s.Require().Equal(domain.PaymentUnpaid, order.PaymentStatus)

	stored, err := s.OrderService.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Details, 2)
	s.Require().Equal("RAU01", stored.Details[0].Code)
	s.Require().Equal(int32(2), stored.Details[0].Quantity)
	s.Require().Equal(int64(45), stored.Details[1].PriceDiscounted)
	s.Require().True(stored.Details[1].Discount.Value.Equal(pricing.PercentInt(10).Value))
	s.Require().Equal("an@example.com", stored.ContactEmail())
	s.Require().Equal("Hà Nội", stored.Address.Province)

	_, err = s.CartService.Get(s.Ctx, sessionID)
	s.Require().ErrorIs(err, domain.ErrCartNotFound)

	s.Require().Eventually(func() bool {
		return s.outboxPublished(strconv.FormatInt(order.ID, 10), generalDomain.EventOrderCreated)
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *IntegrationTestSuite) TestCheckout_EmptyCart() {
	view, err := s.CartService.Create(s.Ctx)
	s.Require().NoError(err)

	_, err = s.CartService.Checkout(s.Ctx, view.SessionID, service.CheckoutInput{ReceivedMoney: 100})
	s.Require().ErrorIs(err, domain.ErrEmptyOrder)

	var count int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM orders`).Scan(&count))
	s.Require().Zero(count)

	_, err = s.CartService.Get(s.Ctx, view.SessionID)
	s.Require().NoError(err, "a rejected checkout keeps the session")
}

func (s *IntegrationTestSuite) TestCheckout_WithCoupon() {
	id := s.seedProduct("GAO01", "Gạo ST25", 200, pricing.Amount(20))
	s.seedCoupon("TET2025", 10, 100)
	s.seedCoupon("BIGSPENDER", 10, 1000)

	c := cart.New()
	product, err := s.Catalog.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	c.Add(product.Snapshot())

	_, err = s.OrderService.Checkout(s.Ctx, c, service.CheckoutInput{CouponName: "BIGSPENDER"})
	s.Require().ErrorIs(err, domain.ErrCouponMinOrder)

	_, err = s.OrderService.Checkout(s.Ctx, c, service.CheckoutInput{CouponName: "MISSING"})
	s.Require().ErrorIs(err, repository.ErrCouponNotFound)

	order, err := s.OrderService.Checkout(s.Ctx, c, service.CheckoutInput{CouponName: "TET2025", ReceivedMoney: 200})
	s.Require().NoError(err)
	s.Require().Equal(int64(200), order.TotalPrice)
	s.Require().Equal(int64(160), order.IntoMoney)
	s.Require().Equal(int64(40), order.ExchangeMoney)

	stored, err := s.OrderService.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.Coupon)
	s.Require().Equal("TET2025", stored.Coupon.Name)
	s.Require().Equal(int64(10), stored.Coupon.DiscountPercent)
}
