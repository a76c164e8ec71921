package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/pos-console/pkg/cart"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"github.com/sakashimaa/pos-console/pkg/pricing"
	"github.com/sakashimaa/pos-console/pkg/utils"
	"github.com/sakashimaa/pos-console/services/order/internal/domain"
	"github.com/sakashimaa/pos-console/services/order/internal/repository"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Order matters: a not-found wrapped in ErrPersistence must still map to 404.
var statusMappings = []utils.StatusMapping{
	{Err: repository.ErrOrderNotFound, Status: fiber.StatusNotFound},
	{Err: repository.ErrProductNotFound, Status: fiber.StatusNotFound},
	{Err: repository.ErrCouponNotFound, Status: fiber.StatusNotFound},
	{Err: repository.ErrCustomerNotFound, Status: fiber.StatusNotFound},
	{Err: domain.ErrCartNotFound, Status: fiber.StatusNotFound},
	{Err: cart.ErrLineNotFound, Status: fiber.StatusNotFound},
	{Err: cart.ErrInvalidQuantity, Status: fiber.StatusBadRequest},
	{Err: pricing.ErrInvalidDiscountRule, Status: fiber.StatusBadRequest},
	{Err: domain.ErrInvalidStatus, Status: fiber.StatusBadRequest},
	{Err: domain.ErrEmptyOrder, Status: fiber.StatusUnprocessableEntity},
	{Err: domain.ErrCouponExpired, Status: fiber.StatusUnprocessableEntity},
	{Err: domain.ErrCouponMinOrder, Status: fiber.StatusUnprocessableEntity},
	{Err: domain.ErrStatusChangeInFlight, Status: fiber.StatusConflict},
	{Err: domain.ErrTerminalStatus, Status: fiber.StatusConflict},
	{Err: gobreaker.ErrOpenState, Status: fiber.StatusServiceUnavailable},
	{Err: domain.ErrPersistence, Status: fiber.StatusServiceUnavailable},
}

func writeError(c *fiber.Ctx, logger *zap.Logger, msg string, err error, fields ...zap.Field) error {
	status := utils.HTTPStatus(err, statusMappings...)

	fields = append(fields, zap.Int("http_status", status), zap.Error(err))
	if status == fiber.StatusInternalServerError {
		mylogger.Error(c.UserContext(), logger, msg, fields...)
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}

	mylogger.Warn(c.UserContext(), logger, msg, fields...)

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
