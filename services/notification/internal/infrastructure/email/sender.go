package email

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/smtp"

	"github.com/sakashimaa/pos-console/pkg/config"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/services/notification/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, msg domain.Email) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpSender struct {
	from     string
	password string
	host     string
	port     string
	sendMail sendMailFunc
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewSMTPSender(cfg config.SMTP, logger *zap.Logger) Sender {
	return &smtpSender{
		from:     cfg.User,
		password: cfg.Password,
		host:     cfg.Host,
		port:     cfg.Port,
		sendMail: smtp.SendMail,
		logger:   logger,
		tracer:   otel.Tracer("notification/infrastructure/email"),
	}
}

func (s *smtpSender) Send(ctx context.Context, msg domain.Email) error {
	ctx, span := s.tracer.Start(ctx, "smtp.Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("to.email", msg.To),
		attribute.String("subject", msg.Subject),
	)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.from, s.password, s.host)

	mylogger.Info(
		ctx,
		s.logger,
		"Sending email",
		zap.String("to", msg.To),
	)

	if err := s.sendMail(addr, auth, s.from, []string{msg.To}, buildMessage(s.from, msg)); err != nil {
		span.RecordError(err)
		mylogger.Error(
			ctx,
			s.logger,
			"Error sending email",
			zap.String("to", msg.To),
			zap.Error(err),
		)

		return fmt.Errorf("failed to send mail: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Sent email successfully",
		zap.String("to", msg.To),
	)

	return nil
}

func buildMessage(from string, msg domain.Email) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	return b.Bytes()
}
