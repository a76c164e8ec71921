package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/pkg/pricing"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order, createdBy int64) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID int64, axis domain.Axis, value string) error
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("order_repository"),
	}
}

func (r *orderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order, createdBy int64) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int("details_count", len(order.Details)),
		attribute.Int64("into_money", order.IntoMoney),
	)

	var couponName, couponDescription *string
	var couponPercent *int64
	if order.Coupon != nil {
		couponName = &order.Coupon.Name
		couponDescription = &order.Coupon.Description
		couponPercent = &order.Coupon.DiscountPercent
	}

	queryOrder := `
		INSERT INTO orders (
			total_price, price_discounted, into_money, received_money, exchange_money,
			delivery_status, payment_status, customer_id,
			coupon_name, coupon_description, coupon_discount_percent,
			phone, street, commune, district, province, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`

	if err := tx.QueryRow(
		ctx,
		queryOrder,
		order.TotalPrice,
		order.PriceDiscounted,
		order.IntoMoney,
		order.ReceivedMoney,
		order.ExchangeMoney,
		string(order.DeliveryStatus),
		string(order.PaymentStatus),
		order.CustomerID,
		couponName,
		couponDescription,
		couponPercent,
		order.Phone,
		order.Address.Street,
		order.Address.Commune,
		order.Address.District,
		order.Address.Province,
		createdBy,
	).Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order: %w", err)
	}

	queryDetail := `
		INSERT INTO order_details (
			order_id, position, product_id, code, name, image,
			price, discount_kind, discount_value, price_discounted, quantity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11)
		RETURNING id
	`

	for i := range order.Details {
		d := &order.Details[i]
		d.OrderID = order.ID

		if err := tx.QueryRow(
			ctx,
			queryDetail,
			order.ID,
			i,
			d.ProductID,
			d.Code,
			d.Name,
			d.Image,
			d.Price,
			string(d.Discount.Kind),
			d.Discount.Value.String(),
			d.PriceDiscounted,
			d.Quantity,
		).Scan(&d.ID); err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to insert order detail",
				zap.Int64("order_id", order.ID),
				zap.Int64("product_id", d.ProductID),
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert order detail: %w", err)
		}
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", id))

	query := `
		SELECT o.id, o.total_price, o.price_discounted, o.into_money, o.received_money, o.exchange_money,
			o.delivery_status, o.payment_status, o.customer_id,
			o.coupon_name, o.coupon_description, o.coupon_discount_percent,
			o.phone, o.street, o.commune, o.district, o.province, o.created_at, o.updated_at,
			c.name, c.email, c.phone, c.avatar
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`

	var (
		order             domain.Order
		deliveryStatus    string
		paymentStatus     string
		couponName        *string
		couponDescription *string
		couponPercent     *int64
		customerName      *string
		customerEmail     *string
		customerPhone     *string
		customerAvatar    *string
	)

	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.TotalPrice,
		&order.PriceDiscounted,
		&order.IntoMoney,
		&order.ReceivedMoney,
		&order.ExchangeMoney,
		&deliveryStatus,
		&paymentStatus,
		&order.CustomerID,
		&couponName,
		&couponDescription,
		&couponPercent,
		&order.Phone,
		&order.Address.Street,
		&order.Address.Commune,
		&order.Address.District,
		&order.Address.Province,
		&order.CreatedAt,
		&order.UpdatedAt,
		&customerName,
		&customerEmail,
		&customerPhone,
		&customerAvatar,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to get order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order.DeliveryStatus = domain.DeliveryStatus(deliveryStatus)
	order.PaymentStatus = domain.PaymentStatus(paymentStatus)

	if couponName != nil {
		order.Coupon = &domain.OrderCoupon{Name: *couponName}
		if couponDescription != nil {
			order.Coupon.Description = *couponDescription
		}
		if couponPercent != nil {
			order.Coupon.DiscountPercent = *couponPercent
		}
	}

	if order.CustomerID != nil && customerName != nil {
		order.Customer = &domain.Customer{
			ID:     *order.CustomerID,
			Name:   *customerName,
			Email:  deref(customerEmail),
			Phone:  deref(customerPhone),
			Avatar: deref(customerAvatar),
		}
	}

	details, err := r.getDetails(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	order.Details = details

	return &order, nil
}

func (r *orderRepo) getDetails(ctx context.Context, orderID int64) ([]domain.OrderDetail, error) {
	query := `
		SELECT id, order_id, product_id, code, name, image,
			price, discount_kind, discount_value::text, price_discounted, quantity
		FROM order_details
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order_details",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order details: %w", err)
	}
	defer rows.Close()

	details := make([]domain.OrderDetail, 0)
	for rows.Next() {
		var (
			d             domain.OrderDetail
			discountKind  string
			discountValue string
		)

		if err := rows.Scan(
			&d.ID,
			&d.OrderID,
			&d.ProductID,
			&d.Code,
			&d.Name,
			&d.Image,
			&d.Price,
			&discountKind,
			&discountValue,
			&d.PriceDiscounted,
			&d.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order detail: %w", err)
		}

		d.Discount, err = scanDiscount(discountKind, discountValue)
		if err != nil {
			return nil, err
		}

		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return details, nil
}

// UpdateStatus writes a single status column and leaves every other field untouched.
func (r *orderRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID int64, axis domain.Axis, value string) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("axis", string(axis)),
		attribute.String("status", value),
	)

	var query string
	switch axis {
	case domain.AxisDelivery:
		query = `UPDATE orders SET delivery_status = $1, updated_at = NOW() WHERE id = $2`
	case domain.AxisPayment:
		query = `UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2`
	default:
		return fmt.Errorf("%w: unknown axis %q", domain.ErrInvalidStatus, axis)
	}

	commandTag, err := tx.Exec(ctx, query, value, orderID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update order status",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		mylogger.Warn(
			ctx,
			r.logger,
			"Order not found",
			zap.Int64("order_id", orderID),
		)

		return ErrOrderNotFound
	}

	return nil
}

func scanDiscount(kind, value string) (pricing.DiscountRule, error) {
	if kind == "" {
		return pricing.None(), nil
	}

	v, err := decimal.NewFromString(value)
	if err != nil {
		return pricing.None(), fmt.Errorf("invalid discount value %q: %w", value, err)
	}

	return pricing.DiscountRule{Kind: pricing.DiscountKind(kind), Value: v}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
