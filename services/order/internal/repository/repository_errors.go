package repository

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSessionNotFound  = errors.New("cart session not found")
)
