package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/household-services/controllers"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
)

func SetupServiceRoutes(app *fiber.App, protected fiber.Handler) {
	admin := middleware.RequireRole(models.RoleAdmin)

	service := app.Group("/api/services")
	service.Get("/", controllers.GetAllServices)
	service.Post("/", protected, admin, controllers.CreateService)
	service.Delete("/:id", protected, admin, controllers.DeleteService)
	service.Put("/:id", protected, admin, controllers.ToggleServiceAvailability)
	service.Put("/:id/toggle-availability", protected, admin, controllers.ToggleServiceAvailability)
}
