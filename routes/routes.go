package routes

import (
	"github.com/gofiber/fiber/v2"
)

// Setup registers every route group. protected is the JWT guard.
func Setup(app *fiber.App, protected fiber.Handler) {
	SetupAuthRoutes(app, protected)
	SetupUserRoutes(app, protected)
	SetupServiceRoutes(app, protected)
	SetupRequestRoutes(app, protected)
	SetupProfessionalRoutes(app, protected)
	SetupAdminRoutes(app, protected)
	SetupProfileRoutes(app, protected)
}
