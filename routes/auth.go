package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/household-services/controllers"
	"github.com/meinhoongagan/household-services/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, protected fiber.Handler) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/register", controllers.Register)
	auth.Post("/login", controllers.Login)

	// Protected routes
	auth.Post("/logout", protected, controllers.Logout)
	auth.Get("/me", protected, middleware.RequireRole(), controllers.GetUserProfile)
}
