package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/household-services/controllers"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
)

// SetupRequestRoutes configures the customer side of service requests.
func SetupRequestRoutes(app *fiber.App, protected fiber.Handler) {
	req := app.Group("/api/request-service", protected, middleware.RequireRole(models.RoleCustomer))
	req.Post("/", controllers.RequestService)
	req.Get("/", controllers.GetCustomerRequests)
	req.Delete("/:id", controllers.CancelRequest)
	req.Patch("/:id", controllers.CompleteRequest)
	req.Patch("/:id/complete", controllers.CompleteRequest)
	req.Post("/:id/rate", controllers.RateRequest)
}

// SetupProfessionalRoutes configures the professional side of service requests.
func SetupProfessionalRoutes(app *fiber.App, protected fiber.Handler) {
	pro := app.Group("/api/service-requests", protected, middleware.RequireRole(models.RoleProfessional))
	pro.Get("/", controllers.GetProfessionalRequests)
	pro.Put("/:id/accept", controllers.AcceptRequest)
}
