package domain

import "fmt"

// Axis names one of the two independent status columns of an order.
type Axis string

const (
	AxisDelivery Axis = "delivery_status"
	AxisPayment  Axis = "payment_status"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryAborted   DeliveryStatus = "aborted"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

var statusLabels = map[string]string{
	string(DeliveryDelivered): "received",
	string(DeliveryPending):   "awaiting processing",
	string(DeliveryAborted):   "cancelled",
	string(PaymentPaid):       "paid",
	string(PaymentUnpaid):     "unpaid",
}

func ParseAxis(s string) (Axis, error) {
	switch a := Axis(s); a {
	case AxisDelivery, AxisPayment:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown axis %q", ErrInvalidStatus, s)
	}
}

// Accepts reports whether value is a state of this axis.
func (a Axis) Accepts(value string) bool {
	switch a {
	case AxisDelivery:
		switch DeliveryStatus(value) {
		case DeliveryPending, DeliveryDelivered, DeliveryAborted:
			return true
		}
	case AxisPayment:
		switch PaymentStatus(value) {
		case PaymentUnpaid, PaymentPaid:
			return true
		}
	}
	return false
}

// IsTerminal reports whether the workflow normally stops moving this axis once it holds value.
func (a Axis) IsTerminal(value string) bool {
	switch a {
	case AxisDelivery:
		return value == string(DeliveryDelivered) || value == string(DeliveryAborted)
	case AxisPayment:
		return value == string(PaymentPaid)
	default:
		return false
	}
}

// StatusLabel is the customer-facing wording for a status value.
func StatusLabel(value string) string {
	if label, ok := statusLabels[value]; ok {
		return label
	}
	return value
}
