package cart

import "github.com/sakashimaa/pos-console/pkg/pricing"

// Totals is derived from the lines on every read and never stored on its own.
type Totals struct {
	TotalPrice      int64 `json:"total_price"`
	LineDiscount    int64 `json:"line_discount"`
	CouponDiscount  int64 `json:"coupon_discount"`
	PriceDiscounted int64 `json:"price_discounted"`
	IntoMoney       int64 `json:"into_money"`
}

// Summarize sums snapshot prices and discounts. The coupon is applied to the undiscounted total.
func Summarize(lines []Line, coupon pricing.DiscountRule) Totals {
	var t Totals
	for _, l := range lines {
		t.TotalPrice += l.Subtotal()
		t.LineDiscount += l.DiscountTotal()
	}

	t.CouponDiscount = pricing.DiscountAmount(t.TotalPrice, coupon)
	t.PriceDiscounted = t.LineDiscount + t.CouponDiscount
	t.IntoMoney = max(0, t.TotalPrice-t.PriceDiscounted)

	return t
}

// Change is the money handed back to the customer; zero until received covers intoMoney.
func Change(received, intoMoney int64) int64 {
	if received < intoMoney {
		return 0
	}
	return received - intoMoney
}
