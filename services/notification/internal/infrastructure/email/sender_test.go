package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/sakashimaa/pos-console/services/notification/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func TestBuildMessage(t *testing.T) {
	raw := string(buildMessage("shop@example.com", domain.Email{
		To:      "an@example.com",
		ReplyTo: "support@example.com",
		Subject: "Đơn hàng đã giao",
		HTML:    "<p>hello</p>",
	}))

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found)

	assert.Contains(t, headers, "From: shop@example.com\r\n")
	assert.Contains(t, headers, "To: an@example.com\r\n")
	assert.Contains(t, headers, "Reply-To: support@example.com\r\n")
	assert.Contains(t, headers, "Subject: =?utf-8?q?")
	assert.Contains(t, headers, "Content-Type: text/html")
	assert.Equal(t, "<p>hello</p>", body)
}

func TestBuildMessage_NoReplyTo(t *testing.T) {
	raw := string(buildMessage("shop@example.com", domain.Email{To: "an@example.com", Subject: "Order status updated"}))

	assert.NotContains(t, raw, "Reply-To")
	assert.Contains(t, raw, "Subject: Order status updated\r\n")
}

func TestSend(t *testing.T) {
	var gotAddr string
	var gotTo []string

	s := &smtpSender{
		from: "shop@example.com",
		host: "smtp.example.com",
		port: "587",
		sendMail: func(addr string, _ smtp.Auth, _ string, to []string, _ []byte) error {
			gotAddr = addr
			gotTo = to
			return nil
		},
		logger: zap.NewNop(),
		tracer: noop.NewTracerProvider().Tracer("test"),
	}

	require.NoError(t, s.Send(context.Background(), domain.Email{To: "an@example.com", Subject: "x"}))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"an@example.com"}, gotTo)

	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("550 mailbox unavailable")
	}
	assert.Error(t, s.Send(context.Background(), domain.Email{To: "an@example.com"}))
}
