package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/household-services/controllers"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
)

func SetupAdminRoutes(app *fiber.App, protected fiber.Handler) {
	admin := middleware.RequireRole(models.RoleAdmin)

	app.Get("/api/admin/service-requests", protected, admin, controllers.GetAllServiceRequests)

	export := app.Group("/admin/api/export-csv", protected, admin)
	export.Post("/", controllers.StartExport)
	export.Get("/:task_id", controllers.ExportStatus)

	app.Get("/download/:filename", controllers.DownloadExport)
}
