package enrollmentRoutes

import (
	controllers "elearn/controllers/course"
	"elearn/middleware"
	enrollmentValidators "elearn/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(app *fiber.App) {
	enrollmentGroup := app.Group("/api/v1/enrollment", middleware.JWTMiddleware)

	enrollmentGroup.Post("/courses/:course_slug/enroll", middleware.RequireStudent, enrollmentValidators.EnrollCourse(), controllers.EnrollInCourse)
	enrollmentGroup.Get("/enrollments", middleware.RequireStudent, controllers.StudentEnrollments)

	enrollmentGroup.Get("/instructor/enrollments", middleware.RequireInstructor, controllers.InstructorEnrollments)
	enrollmentGroup.Get("/instructor/courses/:course_slug/enrollments", middleware.RequireInstructor, enrollmentValidators.EnrollCourse(), controllers.InstructorCourseEnrollments)
}
