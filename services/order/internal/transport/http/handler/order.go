package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/pkg/utils"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/service"
	"go.uber.org/zap"
)

type StatusChanger interface {
	RequestStatusChange(ctx context.Context, orderID int64, axis domain.Axis, value string) (*domain.Order, error)
}

type OrderHandler struct {
	orders   service.OrderService
	workflow StatusChanger
	validate *validator.Validate
	logger   *zap.Logger
	timeout  time.Duration
}

func NewOrderHandler(orders service.OrderService, workflow StatusChanger, logger *zap.Logger, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		workflow: workflow,
		validate: validator.New(),
		logger:   logger,
		timeout:  timeout,
	}
}

type UpdateStatusInput struct {
	Axis   string `json:"axis" validate:"required,oneof=delivery_status payment_status"`
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return badRequest(c, "invalid order id")
	}

	order, err := h.orders.GetByID(ctx, id)
	if err != nil {
		return writeError(c, h.logger, "get order failed", err, zap.Int64("order_id", id))
	}

	return c.Status(fiber.StatusOK).JSON(order)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return badRequest(c, "invalid order id")
	}

	input := new(UpdateStatusInput)
	if err := c.BodyParser(input); err != nil {
		mylogger.Warn(ctx, h.logger, "body parsing error", zap.Error(err))
		return badRequest(c, "invalid request body")
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	axis, err := domain.ParseAxis(input.Axis)
	if err != nil {
		return badRequest(c, err.Error())
	}

	order, err := h.workflow.RequestStatusChange(ctx, id, axis, input.Status)
	if err != nil {
		return writeError(c, h.logger, "status change failed", err,
			zap.Int64("order_id", id),
			zap.String("axis", input.Axis),
			zap.String("status", input.Status),
		)
	}

	return c.Status(fiber.StatusOK).JSON(order)
}
