// Package cart holds the draft order a console session assembles before checkout.
//
// A Cart is not safe for concurrent use. The owning session serializes mutations.
package cart

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/sakashimaa/pos-console/pkg/pricing"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrQuantityPending = errors.New("quantity edit pending")
	ErrLineNotFound    = errors.New("product is not in the cart")
)

// Snapshot is the catalog state frozen into a line when the product is first added.
type Snapshot struct {
	ProductID int64
	Code      string
	Name      string
	Image     string
	Price     int64
	Discount  pricing.DiscountRule
}

type Line struct {
	ProductID       int64                `json:"product_id"`
	Code            string               `json:"code"`
	Name            string               `json:"name"`
	Image           string               `json:"image,omitempty"`
	Price           int64                `json:"price"`
	Discount        pricing.DiscountRule `json:"discount"`
	PriceDiscounted int64                `json:"price_discounted"`
	Quantity        int                  `json:"quantity"`
}

func (l Line) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

func (l Line) DiscountTotal() int64 {
	return (l.Price - l.PriceDiscounted) * int64(l.Quantity)
}

type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add appends a line for a new product or bumps the quantity of an existing one.
// The snapshot of an existing line is kept as it was on first add.
func (c *Cart) Add(s Snapshot) Line {
	if i := c.indexOf(s.ProductID); i >= 0 {
		c.lines[i].Quantity++
		return c.lines[i]
	}

	discount := s.Discount.Normalize()
	line := Line{
		ProductID:       s.ProductID,
		Code:            s.Code,
		Name:            s.Name,
		Image:           s.Image,
		Price:           s.Price,
		Discount:        discount,
		PriceDiscounted: pricing.EffectiveUnitPrice(s.Price, discount),
		Quantity:        1,
	}
	c.lines = append(c.lines, line)

	return line
}

// SetQuantity parses raw user input. Blank input yields ErrQuantityPending and anything that is not a
// positive integer yields ErrInvalidQuantity; in both cases the cart is left as it was.
func (c *Cart) SetQuantity(productID int64, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrQuantityPending
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return ErrInvalidQuantity
	}

	return c.SetQuantityInt(productID, n)
}

func (c *Cart) SetQuantityInt(productID int64, n int) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}

	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}

	c.lines[i].Quantity = n
	return nil
}

// Remove deletes the line for productID and reports whether it was present.
func (c *Cart) Remove(productID int64) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}

	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Line(productID int64) (Line, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return Line{}, false
	}
	return c.lines[i], true
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Totals() Totals {
	return Summarize(c.lines, pricing.None())
}

func (c *Cart) TotalsWithCoupon(coupon pricing.DiscountRule) Totals {
	return Summarize(c.lines, coupon)
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

type cartJSON struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(cartJSON{Lines: lines})
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var v cartJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	c.lines = c.lines[:0]
	for _, l := range v.Lines {
		if l.Quantity <= 0 || c.indexOf(l.ProductID) >= 0 {
			continue
		}
		c.lines = append(c.lines, l)
	}

	return nil
}
