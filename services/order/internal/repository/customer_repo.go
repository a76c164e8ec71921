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

type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

type customerRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewCustomerRepository(pool *pgxpool.Pool, logger *zap.Logger) CustomerRepository {
	return &customerRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("customer_repository"),
	}
}

func (r *customerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("customer_id", id))

	query := `SELECT id, name, email, phone, avatar FROM customers WHERE id = $1`

	var c domain.Customer
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Avatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}

		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to get customer", zap.Int64("customer_id", id), zap.Error(err))

		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &c, nil
}
