package routes

import (
	"github.com/gofiber/fiber/v2"

	"embroidery-backend/controller"
	"embroidery-backend/middleware"
)

func RegisterProductRoutes(app *fiber.App, pc *controller.ProductController, authMiddleware fiber.Handler) {
	api := app.Group("/api")
	p := api.Group("/products")

	p.Get("/", pc.ListProducts)
	p.Get("/alldesigns", pc.ListDesigns)
	p.Get("/category/:category", pc.ListByCategory)
	p.Get("/latest", pc.ListLatest)
	p.Get("/freebie", pc.ListFreebies)
	p.Get("/search", pc.SearchByName)
	p.Get("/slug/:slug", pc.GetProductBySlug)

	p.Post("/", authMiddleware, middleware.RoleRequired("admin"), pc.CreateProduct)
	p.Patch("/bulkUpdate", authMiddleware, middleware.RoleRequired("admin"), pc.BulkUpdate)
	p.Patch("/bulkUpdateAll", authMiddleware, middleware.RoleRequired("admin"), pc.BulkUpdateAll)

	p.Get("/:id", pc.GetProduct)
	p.Patch("/:id", authMiddleware, middleware.RoleRequired("admin"), pc.UpdateProduct)
	p.Delete("/:id", authMiddleware, middleware.RoleRequired("admin"), pc.DeleteProduct)
}
