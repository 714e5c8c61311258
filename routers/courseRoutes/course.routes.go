package courseRoutes

import (
	controllers "elearn/controllers/course"
	"elearn/middleware"
	"elearn/validators"
	courseValidators "elearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupContentRoutes registers the instructor-facing course, module and content management routes.
func SetupContentRoutes(app *fiber.App) {
	contentGroup := app.Group("/api/v1/content", middleware.JWTMiddleware, middleware.RequireInstructor)
	slug := validators.SlugParam("slug")

	// Courses
	contentGroup.Post("/courses", courseValidators.CreateCourse(), controllers.CreateCourse)
	contentGroup.Get("/courses", controllers.ListInstructorCourses)
	contentGroup.Get("/courses/:slug", slug, controllers.GetInstructorCourse)
	contentGroup.Put("/courses/:slug", slug, courseValidators.UpdateCourse(), controllers.UpdateCourse)
	contentGroup.Patch("/courses/:slug", slug, courseValidators.UpdateCourse(), controllers.UpdateCourse)
	contentGroup.Delete("/courses/:slug", slug, controllers.DeleteCourse)
	contentGroup.Get("/courses/:slug/stats", slug, controllers.CourseStats)

	// Course media
	contentGroup.Get("/courses/:slug/media", slug, controllers.ListCourseMedia)
	contentGroup.Post("/courses/:slug/media", slug, courseValidators.CreateMedia(), controllers.UploadCourseMedia)
	contentGroup.Delete("/media/:id", controllers.DeleteCourseMedia)

	// Modules
	contentGroup.Post("/course/:slug/create_module", slug, courseValidators.CreateModule(), controllers.CreateModule)
	contentGroup.Get("/course/:slug/modules", slug, controllers.ListModules)
	contentGroup.Get("/modules/:slug", slug, controllers.GetModule)
	contentGroup.Patch("/modules/:slug", slug, courseValidators.UpdateModule(), controllers.UpdateModule)
	contentGroup.Delete("/modules/:slug", slug, controllers.DeleteModule)

	// Contents
	moduleSlug := validators.SlugParam("module_slug")
	contentGroup.Get("/module/:module_slug/content", moduleSlug, controllers.ListContents)
	contentGroup.Post("/module/:module_slug/content", moduleSlug, courseValidators.CreateContent(), controllers.CreateContent)
	contentGroup.Get("/contents/:slug", slug, controllers.GetContent)
	contentGroup.Patch("/contents/:slug", slug, courseValidators.UpdateContent(), controllers.UpdateContent)
	contentGroup.Delete("/contents/:slug", slug, controllers.DeleteContent)
}

func SetupSubjectRoutes(app *fiber.App) {
	subjectGroup := app.Group("/api/v1/subjects", middleware.JWTMiddleware)

	subjectGroup.Get("/", controllers.ListSubjects)
	subjectGroup.Post("/", middleware.RequireInstructor, courseValidators.CreateSubject(), controllers.CreateSubject)
	subjectGroup.Get("/:slug", validators.SlugParam("slug"), controllers.GetSubject)
}

// SetupStudentRoutes registers course browsing and progress tracking for students.
func SetupStudentRoutes(app *fiber.App) {
	studentGroup := app.Group("/api/v1/student", middleware.JWTMiddleware, middleware.RequireStudent)
	slug := validators.SlugParam("slug")

	studentGroup.Get("/courses", controllers.StudentListCourses)
	studentGroup.Get("/courses/:slug", slug, controllers.StudentGetCourse)
	studentGroup.Get("/content/:slug", slug, controllers.StudentGetContent)

	studentGroup.Get("/course/:slug/progress", slug, controllers.GetCourseProgress)
	studentGroup.Get("/content/:slug/progress", slug, controllers.GetContentProgress)
	studentGroup.Post("/content/:slug/progress", slug, courseValidators.ContentProgress(), controllers.UpdateContentProgress)
}
