package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CouponRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Coupon, error)
}

type couponRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewCouponRepository(pool *pgxpool.Pool, logger *zap.Logger) CouponRepository {
	return &couponRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("coupon_repository"),
	}
}

func (r *couponRepo) GetByName(ctx context.Context, name string) (*domain.Coupon, error) {
	ctx, span := r.tracer.Start(ctx, "CouponRepository.GetByName")
	defer span.End()

	span.SetAttributes(attribute.String("coupon", name))

	query := `
		SELECT id, name, description, discount_percent, min_order_value, valid_to, is_active
		FROM coupons
		WHERE name = $1
	`

	var c domain.Coupon
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.DiscountPercent,
		&c.MinOrderValue,
		&c.ValidTo,
		&c.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}

		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to get coupon", zap.String("coupon", name), zap.Error(err))

		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	return &c, nil
}
