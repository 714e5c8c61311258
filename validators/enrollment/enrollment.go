package enrollmentValidator

import (
	"elearn/validators"

	"github.com/gofiber/fiber/v2"
)

// EnrollCourse requires the :course_slug parameter.
func EnrollCourse() fiber.Handler {
	return validators.SlugParam("course_slug")
}
