package domain

import "errors"

var (
	ErrEmptyOrder           = errors.New("order has no items")
	ErrPersistence          = errors.New("persistence failure")
	ErrNotification         = errors.New("notification failure")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrTerminalStatus       = errors.New("status is terminal")
	ErrStatusChangeInFlight = errors.New("status change already in progress")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCouponExpired        = errors.New("coupon expired or inactive")
	ErrCouponMinOrder       = errors.New("order total below coupon minimum")
	ErrForbidden            = errors.New("permission denied")
)
