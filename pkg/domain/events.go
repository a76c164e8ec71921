package domain

import "time"

const (
	EventOrderCreated            = "OrderCreated"
	EventOrderStatusChanged      = "OrderStatusChanged"
	EventOrderStatusNotification = "OrderStatusNotification"
)

type OrderDetail struct {
	ProductID       int64  `json:"product_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	PriceDiscounted int64  `json:"price_discounted"`
	Quantity        int32  `json:"quantity"`
}

type OrderCreatedEvent struct {
	OrderID         int64         `json:"order_id"`
	CustomerID      *int64        `json:"customer_id,omitempty"`
	Details         []OrderDetail `json:"details"`
	TotalPrice      int64         `json:"total_price"`
	PriceDiscounted int64         `json:"price_discounted"`
	IntoMoney       int64         `json:"into_money"`
	CreatedAt       time.Time     `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID   int64     `json:"order_id"`
	Axis      string    `json:"axis"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

// OrderStatusNotification carries an already rendered e-mail; the notification service only delivers it.
type OrderStatusNotification struct {
	NotificationID string    `json:"notification_id"`
	OrderID        int64     `json:"order_id"`
	To             string    `json:"to"`
	ReplyTo        string    `json:"reply_to"`
	Subject        string    `json:"subject"`
	HTMLContent    string    `json:"html_content"`
	StatusLabel    string    `json:"status_label"`
	CreatedAt      time.Time `json:"created_at"`
}
