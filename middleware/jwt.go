package middleware

import (
	"fmt"
	"strings"
	"time"

	"elearn/config"
	"elearn/database"
	"elearn/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Principal is the authenticated user with the role resolved from its profile.
type Principal struct {
	UserID   uint
	Username string
	Role     models.Role
}

const principalKey = "principal"

// GenerateJWT generates a JWT token for the user
func GenerateJWT(user *models.User, role models.Role) (string, error) {
	ttl := time.Duration(config.AppConfig.JWTTTLHours) * time.Hour
	claims := jwt.MapClaims{
		"userId":   user.ID,
		"username": user.Username,
		"role":     string(role),
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

// tokenFromRequest reads a bearer token from the Authorization header, falling back to
// the "token" query parameter used by browser WebSocket clients.
func tokenFromRequest(c *fiber.Ctx) (string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if q := c.Query("token"); q != "" {
			return q, ""
		}
		return "", "Missing or invalid Authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "Invalid Authorization header format"
	}
	return authHeader[len("Bearer "):], ""
}

func parseUserID(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return 0, fmt.Errorf("invalid token payload")
	}
	userID, ok := claims["userId"].(float64) // numeric claims decode as float64
	if !ok {
		return 0, fmt.Errorf("invalid token payload")
	}
	return uint(userID), nil
}

// JWTMiddleware authenticates the request and resolves the caller's role once.
func JWTMiddleware(c *fiber.Ctx) error {
	tokenString, problem := tokenFromRequest(c)
	if problem != "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, problem, nil)
	}

	userID, err := parseUserID(tokenString)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}

	var user models.User
	if err := database.Database.Db.Preload("Student").Preload("Instructor").First(&user, userID).Error; err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	role, _ := user.ResolveRole()
	c.Locals("userId", user.ID)
	c.Locals(principalKey, &Principal{UserID: user.ID, Username: user.Username, Role: role})

	return c.Next()
}

// CurrentUser returns the principal stored by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(*Principal)
	return p, ok
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusBadRequest, false, "Validation failed!", errors)
}
