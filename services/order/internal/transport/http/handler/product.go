package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/pkg/pricing"
	"github.com/sakashimaa/pos-console/pkg/utils"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog  service.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
	timeout  time.Duration
}

func NewProductHandler(catalog service.CatalogService, logger *zap.Logger, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog:  catalog,
		validate: validator.New(),
		logger:   logger,
		timeout:  timeout,
	}
}

type CreateProductInput struct {
	Code     string               `json:"code" validate:"required,max=50"`
	Name     string               `json:"name" validate:"required,min=2,max=200"`
	Price    int64                `json:"price" validate:"gte=0"`
	Discount pricing.DiscountRule `json:"discount"`
	Images   []string             `json:"images" validate:"dive,url"`
}

type UpdateProductInput struct {
	Name     *string               `json:"name" validate:"omitempty,min=2,max=200"`
	Price    *int64                `json:"price" validate:"omitempty,gte=0"`
	Discount *pricing.DiscountRule `json:"discount"`
	Images   []string              `json:"images" validate:"omitempty,dive,url"`
}

// List serves the catalog; search matches the product name ignoring case and Vietnamese diacritics.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	filter := domain.ProductFilter{
		Search: c.Query("search"),
		Code:   c.Query("code"),
	}

	products, err := h.catalog.List(ctx, filter)
	if err != nil {
		return writeError(c, h.logger, "list products failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"products": products,
		"count":    len(products),
	})
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return badRequest(c, "invalid product id")
	}

	product, err := h.catalog.FindByID(ctx, id)
	if err != nil {
		return writeError(c, h.logger, "find product failed", err, zap.Int64("product_id", id))
	}

	return c.Status(fiber.StatusOK).JSON(product)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	input := new(CreateProductInput)
	if err := c.BodyParser(input); err != nil {
		mylogger.Warn(ctx, h.logger, "body parsing error", zap.Error(err))
		return badRequest(c, "invalid request body")
	}

	if err := h.validate.Struct(input); err != nil {
		mylogger.Warn(ctx, h.logger, "create product validation failed", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	product := &domain.Product{
		Code:     input.Code,
		Name:     input.Name,
		Price:    input.Price,
		Discount: input.Discount,
		Images:   input.Images,
	}

	id, err := h.catalog.Create(ctx, product)
	if err != nil {
		return writeError(c, h.logger, "create product failed", err, zap.String("code", input.Code))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": id,
	})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return badRequest(c, "invalid product id")
	}

	input := new(UpdateProductInput)
	if err := c.BodyParser(input); err != nil {
		mylogger.Warn(ctx, h.logger, "body parsing error", zap.Error(err))
		return badRequest(c, "invalid request body")
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	err = h.catalog.Update(ctx, id, &domain.UpdateProductInput{
		Name:     input.Name,
		Price:    input.Price,
		Discount: input.Discount,
		Images:   input.Images,
	})
	if err != nil {
		return writeError(c, h.logger, "update product failed", err, zap.Int64("product_id", id))
	}

	return c.SendStatus(fiber.StatusNoContent)
}
