package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/pos-console/services/order/internal/transport/http/handler"
	"github.com/sakashimaa/pos-console/services/order/internal/transport/http/middleware"
)

type Handlers struct {
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers, accessSecret string) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", middleware.NewAuthMiddleware(accessSecret))

	product := api.Group("/products")
	product.Get("", h.Product.List)
	product.Get("/:id", h.Product.FindByID)
	product.Post("", middleware.RequirePermission(middleware.PermProductUpdate), h.Product.Create)
	product.Patch("/:id", middleware.RequirePermission(middleware.PermProductUpdate), h.Product.Update)

	carts := api.Group("/carts")
	carts.Post("", h.Cart.Create)
	carts.Get("/:id", h.Cart.Get)
	carts.Delete("/:id", h.Cart.Drop)
	carts.Post("/:id/items", h.Cart.AddItem)
	carts.Patch("/:id/items/:productId", h.Cart.SetQuantity)
	carts.Delete("/:id/items/:productId", h.Cart.RemoveItem)
	carts.Post("/:id/checkout", middleware.RequirePermission(middleware.PermOrderCreate), h.Cart.Checkout)

	orders := api.Group("/orders")
	orders.Get("/:id", h.Order.GetByID)
	orders.Patch("/:id/status", middleware.RequirePermission(middleware.PermOrderUpdate), h.Order.UpdateStatus)
}
