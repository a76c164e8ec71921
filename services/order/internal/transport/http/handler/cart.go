package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/pos-console/pkg/cart"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/pkg/utils"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/service"
	"github.com/sakashimaa/pos-console/services/order/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts    service.CartService
	validate *validator.Validate
	logger   *zap.Logger
	timeout  time.Duration
}

func NewCartHandler(carts service.CartService, logger *zap.Logger, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:    carts,
		validate: validator.New(),
		logger:   logger,
		timeout:  timeout,
	}
}

type AddItemInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// SetQuantityInput keeps the quantity as typed; parsing happens in the cart.
type SetQuantityInput struct {
	Quantity string `json:"quantity"`
}

type AddressInput struct {
	Street   string `json:"street" validate:"max=255"`
	Commune  string `json:"commune" validate:"max=100"`
	District string `json:"district" validate:"max=100"`
	Province string `json:"province" validate:"max=100"`
}

type CheckoutRequest struct {
	ReceivedMoney int64        `json:"received_money" validate:"gte=0"`
	CouponName    string       `json:"coupon_name" validate:"max=100"`
	CustomerID    *int64       `json:"customer_id" validate:"omitempty,gt=0"`
	Phone         string       `json:"phone" validate:"max=20"`
	Address       AddressInput `json:"address"`
}

func (h *CartHandler) Create(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	view, err := h.carts.Create(ctx)
	if err != nil {
		return writeError(c, h.logger, "create cart failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sessionID := c.Params("id")

	view, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		return writeError(c, h.logger, "get cart failed", err, zap.String("session_id", sessionID))
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sessionID := c.Params("id")

	input := new(AddItemInput)
	if err := c.BodyParser(input); err != nil {
		mylogger.Warn(ctx, h.logger, "body parsing error", zap.Error(err))
		return badRequest(c, "invalid request body")
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	view, err := h.carts.AddItem(ctx, sessionID, input.ProductID)
	if err != nil {
		return writeError(c, h.logger, "add item failed", err,
			zap.String("session_id", sessionID),
			zap.Int64("product_id", input.ProductID),
		)
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

// SetQuantity answers a blank quantity with the unchanged cart and pending=true.
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sessionID := c.Params("id")
	productID, err := strconv.ParseInt(c.Params("productId"), 10, 64)
	if err != nil || productID <= 0 {
		return badRequest(c, "invalid product id")
	}

	input := new(SetQuantityInput)
	if err := c.BodyParser(input); err != nil {
		mylogger.Warn(ctx, h.logger, "body parsing error", zap.Error(err))
		return badRequest(c, "invalid request body")
	}

	view, err := h.carts.SetQuantity(ctx, sessionID, productID, input.Quantity)
	if errors.Is(err, cart.ErrQuantityPending) {
		view, err = h.carts.Get(ctx, sessionID)
		if err != nil {
			return writeError(c, h.logger, "get cart failed", err, zap.String("session_id", sessionID))
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"cart":    view,
			"pending": true,
		})
	}
	if err != nil {
		return writeError(c, h.logger, "set quantity failed", err,
			zap.String("session_id", sessionID),
			zap.Int64("product_id", productID),
			zap.String("quantity", input.Quantity),
		)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"cart":    view,
		"pending": false,
	})
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sessionID := c.Params("id")
	productID, err := strconv.ParseInt(c.Params("productId"), 10, 64)
	if err != nil || productID <= 0 {
		return badRequest(c, "invalid product id")
	}

	view, err := h.carts.RemoveItem(ctx, sessionID, productID)
	if err != nil {
		return writeError(c, h.logger, "remove item failed", err, zap.String("session_id", sessionID))
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *CartHandler) Drop(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sessionID := c.Params("id")

	if err := h.carts.Drop(ctx, sessionID); err != nil {
		return writeError(c, h.logger, "drop cart failed", err, zap.String("session_id", sessionID))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sessionID := c.Params("id")

	req := new(CheckoutRequest)
	if err := c.BodyParser(req); err != nil {
		mylogger.Warn(ctx, h.logger, "body parsing error", zap.Error(err))
		return badRequest(c, "invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		mylogger.Warn(ctx, h.logger, "checkout validation failed", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	order, err := h.carts.Checkout(ctx, sessionID, service.CheckoutInput{
		ReceivedMoney: req.ReceivedMoney,
		CouponName:    req.CouponName,
		CustomerID:    req.CustomerID,
		Phone:         req.Phone,
		Address: domain.Address{
			Street:   req.Address.Street,
			Commune:  req.Address.Commune,
			District: req.Address.District,
			Province: req.Address.Province,
		},
		CreatedBy: middleware.UserID(c),
	})
	if err != nil {
		return writeError(c, h.logger, "checkout failed", err, zap.String("session_id", sessionID))
	}

	mylogger.Info(
		ctx,
		h.logger,
		"checkout succeeded",
		zap.String("session_id", sessionID),
		zap.Int64("order_id", order.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(order)
}
