package domain

import (
	"errors"

	generalDomain "github.com/sakashimaa/pos-console/pkg/domain"
)

var ErrNoRecipient = errors.New("notification has no recipient")

// Email is a rendered message ready for delivery.
type Email struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

func EmailFromNotification(n generalDomain.OrderStatusNotification) (Email, error) {
	if n.To == "" {
		return Email{}, ErrNoRecipient
	}

	return Email{
		To:      n.To,
		ReplyTo: n.ReplyTo,
		Subject: n.Subject,
		HTML:    n.HTMLContent,
	}, nil
}
