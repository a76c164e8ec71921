package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sakashimaa/pos-console/pkg/testsuite"
	"github.com/sakashimaa/pos-console/services/notification/internal/domain"
	"github.com/sakashimaa/pos-console/services/notification/internal/service"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	sent     []domain.Email
}

func (f *fakeSender) Send(_ context.Context, msg domain.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failures > 0 {
		f.failures--
		return errors.New("smtp: temporary failure")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type NotificationSuite struct {
	testsuite.BaseSuite

	Sender  *fakeSender
	Service *service.NotificationService
}

func (s *NotificationSuite) SetupSuite() {
	s.BaseSuite.SetupInfrastructure("../migrations")
}

func (s *NotificationSuite) TearDownSuite() {
	s.BaseSuite.TearDownInfrastructure()
}

func (s *NotificationSuite) SetupTest() {
	s.BaseSuite.TruncateTable("processed_events")

	s.Sender = &fakeSender{}
	s.Service = service.NewNotificationService(s.Sender, zap.NewNop(), s.DbPool)
}

func TestNotificationSuite(t *testing.T) {
	suite.Run(t, new(NotificationSuite))
}
