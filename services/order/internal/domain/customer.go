package domain

import "time"

type Customer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type Coupon struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	DiscountPercent int64      `json:"discount_percent"`
	MinOrderValue   int64      `json:"min_order_value"`
	ValidTo         *time.Time `json:"valid_to,omitempty"`
	IsActive        bool       `json:"is_active"`
}

// Check verifies the coupon can be applied to an order of the given total at time now.
func (c *Coupon) Check(total int64, now time.Time) error {
	if !c.IsActive || (c.ValidTo != nil && now.After(*c.ValidTo)) {
		return ErrCouponExpired
	}
	if total < c.MinOrderValue {
		return ErrCouponMinOrder
	}
	return nil
}

func (c *Coupon) Snapshot() *OrderCoupon {
	return &OrderCoupon{
		Name:            c.Name,
		Description:     c.Description,
		DiscountPercent: c.DiscountPercent,
	}
}
