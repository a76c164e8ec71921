package domain

import (
	"time"

	generalDomain "github.com/sakashimaa/pos-console/pkg/domain"
	"github.com/sakashimaa/pos-console/pkg/pricing"
)

type Order struct {
	ID              int64          `json:"id"`
	Details         []OrderDetail  `json:"details"`
	TotalPrice      int64          `json:"total_price"`
	PriceDiscounted int64          `json:"price_discounted"`
	IntoMoney       int64          `json:"into_money"`
	ReceivedMoney   int64          `json:"received_money"`
	ExchangeMoney   int64          `json:"exchange_money"`
	DeliveryStatus  DeliveryStatus `json:"delivery_status"`
	PaymentStatus   PaymentStatus  `json:"payment_status"`
	CustomerID      *int64         `json:"customer_id,omitempty"`
	Customer        *Customer      `json:"customer,omitempty"`
	Coupon          *OrderCoupon   `json:"coupon,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	Address         Address        `json:"address"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// OrderDetail is a line item with its pricing frozen at the time it entered the cart.
type OrderDetail struct {
	ID              int64                `json:"id"`
	OrderID         int64                `json:"order_id"`
	ProductID       int64                `json:"product_id"`
	Code            string               `json:"code"`
	Name            string               `json:"name"`
	Image           string               `json:"image,omitempty"`
	Price           int64                `json:"price"`
	Discount        pricing.DiscountRule `json:"discount"`
	PriceDiscounted int64                `json:"price_discounted"`
	Quantity        int32                `json:"quantity"`
}

type Address struct {
	Street   string `json:"street,omitempty"`
	Commune  string `json:"commune,omitempty"`
	District string `json:"district,omitempty"`
	Province string `json:"province,omitempty"`
}

type OrderCoupon struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DiscountPercent int64  `json:"discount_percent"`
}

func (o *Order) Status(axis Axis) string {
	switch axis {
	case AxisDelivery:
		return string(o.DeliveryStatus)
	case AxisPayment:
		return string(o.PaymentStatus)
	default:
		return ""
	}
}

func (o *Order) ContactEmail() string {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.Email
}

func (o *Order) ToCreatedEvent() generalDomain.OrderCreatedEvent {
	details := make([]generalDomain.OrderDetail, 0, len(o.Details))
	for _, d := range o.Details {
		details = append(details, generalDomain.OrderDetail{
			ProductID:       d.ProductID,
			Code:            d.Code,
			Name:            d.Name,
			Price:           d.Price,
			PriceDiscounted: d.PriceDiscounted,
			Quantity:        d.Quantity,
		})
	}

	return generalDomain.OrderCreatedEvent{
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		Details:         details,
		TotalPrice:      o.TotalPrice,
		PriceDiscounted: o.PriceDiscounted,
		IntoMoney:       o.IntoMoney,
		CreatedAt:       o.CreatedAt,
	}
}
