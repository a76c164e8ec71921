package domain

import (
	"github.com/sakashimaa/pos-console/pkg/cart"
	"github.com/sakashimaa/pos-console/pkg/pricing"
)

// Product is catalog reference data. Code is the display code staff type in; ID is the identity.
type Product struct {
	ID       int64                `json:"id"`
	Code     string               `json:"code"`
	Name     string               `json:"name"`
	Price    int64                `json:"price"`
	Discount pricing.DiscountRule `json:"discount"`
	Images   []string             `json:"images"`
}

func (p *Product) EffectivePrice() int64 {
	return pricing.EffectiveUnitPrice(p.Price, p.Discount)
}

func (p *Product) Snapshot() cart.Snapshot {
	s := cart.Snapshot{
		ProductID: p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Price:     p.Price,
		Discount:  p.Discount,
	}
	if len(p.Images) > 0 {
		s.Image = p.Images[0]
	}
	return s
}

type ProductFilter struct {
	Search string
	Code   string
}

type UpdateProductInput struct {
	Name     *string               `json:"name"`
	Price    *int64                `json:"price"`
	Discount *pricing.DiscountRule `json:"discount"`
	Images   []string              `json:"images"`
}
