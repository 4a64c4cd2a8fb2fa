package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/household-services/controllers"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
)

func SetupUserRoutes(app *fiber.App, protected fiber.Handler) {
	users := app.Group("/api/users", protected, middleware.RequireRole(models.RoleAdmin))
	users.Get("/", controllers.GetUsers)
	users.Delete("/:id", controllers.DeleteUser)
	users.Put("/:id", controllers.ToggleUserFlag)
	users.Put("/:id/flag", controllers.ToggleUserFlag)
}

func SetupProfileRoutes(app *fiber.App, protected fiber.Handler) {
	profile := app.Group("/api/user-profile", protected, middleware.RequireRole())
	profile.Get("/", controllers.GetUserProfile)
	profile.Put("/", controllers.UpdateUserProfile)
}
