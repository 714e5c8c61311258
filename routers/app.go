package routers

import (
	"strings"

	"elearn/config"
	authRoutes "elearn/routers/authRoutes"
	"elearn/routers/chatRoutes"
	"elearn/routers/courseRoutes"
	"elearn/routers/dashboardRoutes"
	"elearn/routers/enrollmentRoutes"
	userProfileRoutes "elearn/routers/userRoutes"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the application with every route group mounted.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		BodyLimit:   (cfg.MaxUploadMB + 1) * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if strings.ToLower(cfg.LogMode) != "silent" {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	// uploads kept by the local storage provider
	if cfg.StorageProvider == "" || cfg.StorageProvider == "local" {
		app.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	courseRoutes.SetupContentRoutes(app)
	courseRoutes.SetupSubjectRoutes(app)
	courseRoutes.SetupStudentRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app)
	dashboardRoutes.SetupDashboardRoutes(app)
	chatRoutes.SetupChatRoutes(app)

	return app
}
