package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"elearn/config"
	"elearn/database"
	"elearn/models"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*fiber.App, models.User, models.User) {
	t.Helper()
	config.AppConfig = config.Default()
	db, err := database.OpenSQLite("middleware_" + t.Name())
	require.NoError(t, err)

	student := models.User{Username: "stu", Email: "stu@example.com", Password: "x", Student: &models.Student{}}
	require.NoError(t, db.Create(&student).Error)
	teacher := models.User{Username: "tea", Email: "tea@example.com", Password: "x", Instructor: &models.Instructor{}}
	require.NoError(t, db.Create(&teacher).Error)

	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		p, _ := CurrentUser(c)
		return c.JSON(fiber.Map{"id": p.UserID, "role": p.Role})
	}
	app.Get("/me", JWTMiddleware, whoami)
	app.Get("/student", JWTMiddleware, RequireStudent, whoami)
	app.Get("/instructor", JWTMiddleware, RequireInstructor, whoami)
	return app, student, teacher
}

func get(t *testing.T, app *fiber.App, path, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, sonic.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestJWTMiddlewareResolvesRole(t *testing.T) {
	app, student, teacher := setup(t)

	token, err := GenerateJWT(&student, models.RoleStudent)
	require.NoError(t, err)
	status, out := get(t, app, "/me", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, student.ID, out["id"])
	assert.Equal(t, "STUDENT", out["role"])

	token, err = GenerateJWT(&teacher, models.RoleInstructor)
	require.NoError(t, err)
	status, out = get(t, app, "/me", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "INSTRUCTOR", out["role"])
}

func TestJWTMiddlewareRejects(t *testing.T) {
	app, student, _ := setup(t)

	status, out := get(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, false, out["status"])

	status, _ = get(t, app, "/me", "not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": student.ID,
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte(config.AppConfig.JWTKey))
	require.NoError(t, err)
	status, _ = get(t, app, "/me", signed)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	ghost := models.User{Username: "ghost"}
	ghost.ID = 999
	token, err := GenerateJWT(&ghost, models.RoleStudent)
	require.NoError(t, err)
	status, out = get(t, app, "/me", token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "User not found!", out["message"])
}

func TestTokenFromQuery(t *testing.T) {
	app, student, _ := setup(t)
	token, err := GenerateJWT(&student, models.RoleStudent)
	require.NoError(t, err)

	status, _ := get(t, app, "/me?token="+token, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRoleGuards(t *testing.T) {
	app, student, teacher := setup(t)
	studentToken, err := GenerateJWT(&student, models.RoleStudent)
	require.NoError(t, err)
	teacherToken, err := GenerateJWT(&teacher, models.RoleInstructor)
	require.NoError(t, err)

	status, _ := get(t, app, "/student", studentToken)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = get(t, app, "/instructor", studentToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = get(t, app, "/instructor", teacherToken)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = get(t, app, "/student", teacherToken)
	assert.Equal(t, fiber.StatusForbidden, status)
}
