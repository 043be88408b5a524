package routes

import (
	"github.com/gofiber/fiber/v2"

	"embroidery-backend/controller"
)

// The callback and status routes stay unauthenticated: the gateway calls
// them, not the storefront.
func RegisterPaymentRoutes(app *fiber.App, pc *controller.PaymentController) {
	api := app.Group("/api")
	pay := api.Group("/payment")

	pay.Post("/session", pc.CreateSession)
	pay.Post("/callback", pc.HandleCallback)
	pay.Get("/status/:id", pc.StatusByID)
}
