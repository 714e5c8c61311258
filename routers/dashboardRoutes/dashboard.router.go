package dashboardRoutes

import (
	controllers "elearn/controllers/course"
	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupDashboardRoutes(app *fiber.App) {
	app.Get("/api/v1/dashboard", middleware.JWTMiddleware, controllers.Dashboard)
}
