package routes

import (
	"github.com/gofiber/fiber/v2"

	"embroidery-backend/controller"
	"embroidery-backend/middleware"
)

func RegisterCustomOrderRoutes(app *fiber.App, cc *controller.CustomOrderController, authMiddleware fiber.Handler) {
	api := app.Group("/api")
	co := api.Group("/customOrders")

	co.Get("/", cc.List)
	co.Post("/", authMiddleware, cc.Create)
	co.Get("/:id", cc.Get)
	co.Patch("/:id", authMiddleware, middleware.RoleRequired("admin"), cc.Update)
	co.Delete("/:id", authMiddleware, middleware.RoleRequired("admin"), cc.Delete)
}
