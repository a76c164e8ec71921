package tests

import (
	"time"

	generalDomain "github.com/sakashimaa/pos-console/pkg/domain"
)

func notification(id string) generalDomain.OrderStatusNotification {
	return generalDomain.OrderStatusNotification{
		NotificationID: id,
		OrderID:        17,
		To:             "an@example.com",
		ReplyTo:        "support@example.com",
		Subject:        "Order status updated",
		HTMLContent:    "<p>received</p>",
		StatusLabel:    "received",
		CreatedAt:      time.Now(),
	}
}

func (s *NotificationSuite) TestDeliversOnce() {
	event := notification("n-100")

	s.Require().NoError(s.Service.HandleOrderStatusNotification(s.Ctx, event))
	s.Require().NoError(s.Service.HandleOrderStatusNotification(s.Ctx, event))

	s.Require().Equal(1, s.Sender.count())
	s.Require().Equal("support@example.com", s.Sender.sent[0].ReplyTo)

	var count int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM processed_events WHERE event_id = $1`, "n-100").Scan(&count))
	s.Require().Equal(1, count)
}

func (s *NotificationSuite) TestRetriesTransientFailure() {
	s.Sender.failures = 1

	s.Require().NoError(s.Service.HandleOrderStatusNotification(s.Ctx, notification("n-200")))
	s.Require().Equal(1, s.Sender.count())
}

func (s *NotificationSuite) TestFailureReleasesClaim() {
	s.Sender.failures = 3

	s.Require().Error(s.Service.HandleOrderStatusNotification(s.Ctx, notification("n-300")))

	var count int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM processed_events WHERE event_id = $1`, "n-300").Scan(&count))
	s.Require().Zero(count)

	s.Require().NoError(s.Service.HandleOrderStatusNotification(s.Ctx, notification("n-300")))
	s.Require().Equal(1, s.Sender.count())
}

func (s *NotificationSuite) TestDropsWithoutRecipient() {
	event := notification("n-400")
	event.To = ""

	s.Require().NoError(s.Service.HandleOrderStatusNotification(s.Ctx, event))
	s.Require().Zero(s.Sender.count())
}
