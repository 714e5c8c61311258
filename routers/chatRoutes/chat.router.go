package chatRoutes

import (
	chatController "elearn/controllers/chat"
	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupChatRoutes(app *fiber.App) {
	wsGroup := app.Group("/ws/chat", middleware.JWTMiddleware, chatController.Upgrade)
	wsGroup.Get("/", chatController.Socket)
	wsGroup.Get("/:room_name", chatController.Socket)

	app.Get("/api/v1/chat/rooms/:room_name/messages", middleware.JWTMiddleware, chatController.RoomMessages)
}
