package service

import (
	"context"
	"fmt"

	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CatalogService interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (int64, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error
}

type catalogService struct {
	repo   repository.ProductRepository
	logger *zap.Logger
	tracer trace.Tracer
}

func NewCatalogService(repo repository.ProductRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("catalog_service"),
	}
}

func (s *catalogService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.List")
	defer span.End()

	span.SetAttributes(
		attribute.String("search", filter.Search),
		attribute.String("code", filter.Code),
	)

	products, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list products: %w", err)
	}

	return domain.FilterProducts(products, filter), nil
}

func (s *catalogService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *catalogService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Create")
	defer span.End()

	if err := product.Discount.Validate(); err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, product)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	mylogger.Info(ctx, s.logger, "Product created", zap.Int64("product_id", id), zap.String("code", product.Code))

	return id, nil
}

func (s *catalogService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	if input.Discount != nil {
		if err := input.Discount.Validate(); err != nil {
			return err
		}
	}

	return s.repo.Update(ctx, id, input)
}
