package tests

import (
	"github.com/sakashimaa/pos-console/pkg/pricing"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/repository"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestCatalog_SearchIgnoresDiacritics() {
	s.seedProduct("RAU01", "Rau muống", 100, pricing.None())
	s.seedProduct("DUA01", "Dưa hấu", 80, pricing.Percent(decimal.RequireFromString("12.5")))
	s.seedProduct("DAU01", "Đậu phụ", 20, pricing.None())

	all, err := s.Catalog.List(s.Ctx, domain.ProductFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)

	found, err := s.Catalog.List(s.Ctx, domain.ProductFilter{Search: "dua hau"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Require().Equal("DUA01", found[0].Code)
	s.Require().Equal(int64(70), found[0].EffectivePrice())

	found, err = s.Catalog.List(s.Ctx, domain.ProductFilter{Search: "dau"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Require().Equal("DAU01", found[0].Code)

	cached, err := s.Redis.Exists(s.Ctx, "products:all").Result()
	s.Require().NoError(err)
	s.Require().Equal(int64(1), cached)
}

func (s *IntegrationTestSuite) TestCatalog_UpdateInvalidatesCache() {
	id := s.seedProduct("TRA01", "Trà xanh", 40, pricing.None())

	product, err := s.Catalog.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(int64(40), product.Price)

	price := int64(45)
	discount := pricing.Amount(5)
	s.Require().NoError(s.Catalog.Update(s.Ctx, id, &domain.UpdateProductInput{Price: &price, Discount: &discount}))

	product, err = s.Catalog.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(int64(45), product.Price)
	s.Require().Equal(int64(40), product.EffectivePrice())

	bad := pricing.PercentInt(150)
	err = s.Catalog.Update(s.Ctx, id, &domain.UpdateProductInput{Discount: &bad})
	s.Require().ErrorIs(err, pricing.ErrInvalidDiscountRule)

	_, err = s.Catalog.FindByID(s.Ctx, 9999)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}
