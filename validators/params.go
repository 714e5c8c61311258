package validators

import (
	"fmt"
	"strings"

	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

// SlugParam requires the route parameter and stores it in Locals under the same name.
func SlugParam(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.TrimSpace(c.Params(name))
		if slug == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, fmt.Sprintf("%s is required!", name), nil)
		}
		c.Locals(name, slug)
		return c.Next()
	}
}
