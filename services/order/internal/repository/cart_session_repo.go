package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sakashimaa/pos-console/pkg/cart"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CartSessionRepository keeps draft carts in redis under cart:<session id>, refreshing the TTL on every save.
type CartSessionRepository interface {
	Save(ctx context.Context, sessionID string, c *cart.Cart) error
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

type cartSessionRepo struct {
	rdb    *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewCartSessionRepository(rdb *redis.Client, ttl time.Duration) CartSessionRepository {
	return &cartSessionRepo{
		rdb:    rdb,
		ttl:    ttl,
		tracer: otel.Tracer("cart_session_repository"),
	}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (r *cartSessionRepo) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	ctx, span := r.tracer.Start(ctx, "CartSessionRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.Int("lines", c.Len()),
	)

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.rdb.Set(ctx, cartKey(sessionID), data, r.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

func (r *cartSessionRepo) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	ctx, span := r.tracer.Start(ctx, "CartSessionRepository.Load")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	data, err := r.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}

		span.RecordError(err)
		return nil, fmt.Errorf("load cart: %w", err)
	}

	c := cart.New()
	if err := json.Unmarshal(data, c); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	return c, nil
}

func (r *cartSessionRepo) Delete(ctx context.Context, sessionID string) error {
	ctx, span := r.tracer.Start(ctx, "CartSessionRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	if err := r.rdb.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete cart: %w", err)
	}

	return nil
}
