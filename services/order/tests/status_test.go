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

func (s *IntegrationTestSuite) placeOrder() *domain.Order {
	id := s.seedProduct("SUA01", "Sữa tươi", 30, pricing.None())
	customerID := s.seedCustomer("Trần Thị Bình", "binh@example.com")

	product, err := s.Catalog.FindByID(s.Ctx, id)
	s.Require().NoError(err)

	c := cart.New()
	c.Add(product.Snapshot())

	order, err := s.OrderService.Checkout(s.Ctx, c, service.CheckoutInput{ReceivedMoney: 30, CustomerID: &customerID})
	s.Require().NoError(err)
	return order
}

func (s *IntegrationTestSuite) TestStatusChange_Delivered() {
	order := s.placeOrder()

	updated, err := s.Workflow.RequestStatusChange(s.Ctx, order.ID, domain.AxisDelivery, "delivered")
	s.Require().NoError(err)
	s.Require().Equal(domain.DeliveryDelivered, updated.DeliveryStatus)
	s.Require().Equal(domain.PaymentUnpaid, updated.PaymentStatus)
	s.Require().True(!updated.UpdatedAt.Before(order.UpdatedAt))

	s.Workflow.Wait()
	s.Require().Equal([]string{"received"}, s.Notifier.sent())

	s.Require().Eventually(func() bool {
		return s.outboxPublished(strconv.FormatInt(order.ID, 10), generalDomain.EventOrderStatusChanged)
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *IntegrationTestSuite) TestStatusChange_AxesAreIndependent() {
	order := s.placeOrder()

	_, err := s.Workflow.RequestStatusChange(s.Ctx, order.ID, domain.AxisPayment, "paid")
	s.Require().NoError(err)

	updated, err := s.Workflow.RequestStatusChange(s.Ctx, order.ID, domain.AxisDelivery, "aborted")
	s.Require().NoError(err)
	s.Require().Equal(domain.PaymentPaid, updated.PaymentStatus)
	s.Require().Equal(domain.DeliveryAborted, updated.DeliveryStatus)
}

func (s *IntegrationTestSuite) TestStatusChange_UnknownOrder() {
	_, err := s.Workflow.RequestStatusChange(s.Ctx, 4242, domain.AxisPayment, "paid")
	s.Require().ErrorIs(err, domain.ErrPersistence)
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)

	s.Workflow.Wait()
	s.Require().Empty(s.Notifier.sent())

	var count int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM outbox`).Scan(&count))
	s.Require().Zero(count, "a failed update must not leave an event behind")
}

func (s *IntegrationTestSuite) TestStatusChange_InvalidValue() {
	order := s.placeOrder()

	_, err := s.Workflow.RequestStatusChange(s.Ctx, order.ID, domain.AxisDelivery, "shipped")
	s.Require().ErrorIs(err, domain.ErrInvalidStatus)

	stored, err := s.OrderService.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.DeliveryPending, stored.DeliveryStatus)
}
