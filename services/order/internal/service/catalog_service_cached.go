package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"go.uber.org/zap"
)

const catalogKey = "products:all"

// cachedCatalogService caches single products and the unfiltered catalog; filters run on the cached list.
type cachedCatalogService struct {
	next        CatalogService
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      *zap.Logger
}

func NewCachedCatalogService(next CatalogService, redisClient *redis.Client, cacheTTL time.Duration, logger *zap.Logger) CatalogService {
	return &cachedCatalogService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *cachedCatalogService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var products []domain.Product
	if s.get(ctx, catalogKey, &products) {
		return domain.FilterProducts(products, filter), nil
	}

	products, err := s.next.List(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}

	s.set(ctx, catalogKey, products)

	return domain.FilterProducts(products, filter), nil
}

func (s *cachedCatalogService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if s.get(ctx, productKey(id), &product) {
		return &product, nil
	}

	found, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.set(ctx, productKey(id), found)

	return found, nil
}

func (s *cachedCatalogService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	id, err := s.next.Create(ctx, product)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, catalogKey)
	return id, nil
}

func (s *cachedCatalogService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	if err := s.next.Update(ctx, id, input); err != nil {
		return err
	}

	s.invalidate(ctx, catalogKey, productKey(id))
	return nil
}

func (s *cachedCatalogService) get(ctx context.Context, key string, dst any) bool {
	val, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			mylogger.Warn(ctx, s.logger, "Catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(val, dst); err != nil {
		mylogger.Warn(ctx, s.logger, "Catalog cache entry corrupted", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

func (s *cachedCatalogService) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}

	if err := s.redisClient.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		mylogger.Warn(ctx, s.logger, "Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *cachedCatalogService) invalidate(ctx context.Context, keys ...string) {
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		mylogger.Warn(ctx, s.logger, "Catalog cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
