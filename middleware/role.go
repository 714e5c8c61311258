package middleware

import (
	"elearn/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole lets the request through only when the caller holds the given role.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := CurrentUser(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}
		if p.Role != role {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}

var (
	RequireStudent    = RequireRole(models.RoleStudent)
	RequireInstructor = RequireRole(models.RoleInstructor)
)
