package userProfileRoutes

import (
	userProfileController "elearn/controllers/userControllers"
	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user")

	userGroup.Post("/profile/picture", middleware.JWTMiddleware, userProfileController.UploadProfilePicture)
}
