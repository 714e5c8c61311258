package routers

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"elearn/config"
	"elearn/database"
	"elearn/models/chat"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t   *testing.T
	app *fiber.App
}

type envelope struct {
	Status  bool                   `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func (c client) do(method, path, token string, body interface{}) (int, envelope) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	var env envelope
	// list endpoints answer with an array; only the envelope fields matter then
	var loose struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(raw, &env); err != nil {
		require.NoError(c.t, sonic.Unmarshal(raw, &loose), string(raw))
		env.Status, env.Message = loose.Status, loose.Message
	}
	return resp.StatusCode, env
}

func newClient(t *testing.T) client {
	t.Helper()
	cfg := config.Default()
	cfg.LogMode = "silent"
	cfg.MediaRoot = t.TempDir()
	config.AppConfig = cfg
	_, err := database.OpenSQLite("routers_" + t.Name())
	require.NoError(t, err)
	return client{t: t, app: New(cfg)}
}

func (c client) registerInstructor(name string) string {
	c.t.Helper()
	status, env := c.do("POST", "/auth/register/instructor", "", map[string]interface{}{
		"username":  name,
		"email":     name + "@example.com",
		"password":  "secret123",
		"bio":       "teaches things",
		"education": "MASTERS",
	})
	require.Equal(c.t, fiber.StatusCreated, status, env.Message)
	assert.Equal(c.t, "instructor", env.Data["role"])
	return env.Data["token"].(string)
}

func (c client) registerStudent(name string) string {
	c.t.Helper()
	status, env := c.do("POST", "/auth/register/student", "", map[string]interface{}{
		"username":     name,
		"email":        name + "@example.com",
		"password":     "secret123",
		"birth_date":   "2001-04-12",
		"education":    "BACHELORS",
		"phone_number": "+15550100",
	})
	require.Equal(c.t, fiber.StatusCreated, status, env.Message)
	assert.Equal(c.t, "student", env.Data["role"])
	return env.Data["token"].(string)
}

// buildCourse creates the subject, a course with one module and two text lessons.
func (c client) buildCourse(token string) (course string, lessons []string) {
	c.t.Helper()
	status, env := c.do("POST", "/api/v1/subjects", token, map[string]interface{}{"title": "Programming"})
	require.Equal(c.t, fiber.StatusCreated, status, env.Message)
	subjectID := env.Data["id"]

	status, env = c.do("POST", "/api/v1/content/courses", token, map[string]interface{}{
		"title":         "Go Basics",
		"subject_id":    subjectID,
		"required_time": 10,
		"summary":       "Learn the basics",
	})
	require.Equal(c.t, fiber.StatusCreated, status, env.Message)
	course = env.Data["slug"].(string)
	assert.Equal(c.t, "go-basics", course)
	assert.Equal(c.t, true, env.Data["is_free"])

	status, env = c.do("POST", "/api/v1/content/course/"+course+"/create_module", token, map[string]interface{}{"title": "Getting started"})
	require.Equal(c.t, fiber.StatusCreated, status, env.Message)
	assert.EqualValues(c.t, 0, env.Data["order"])
	module := env.Data["slug"].(string)

	for i, title := range []string{"Installing Go", "Hello World"} {
		status, env = c.do("POST", "/api/v1/content/module/"+module+"/content", token, map[string]interface{}{
			"resourcetype": "TextContent",
			"title":        title,
			"text":         "lesson body",
		})
		require.Equal(c.t, fiber.StatusCreated, status, env.Message)
		assert.EqualValues(c.t, i, env.Data["order"])
		assert.Equal(c.t, "TextContent", env.Data["resourcetype"])
		lessons = append(lessons, env.Data["slug"].(string))
	}
	return course, lessons
}

func TestStudentCompletesCourse(t *testing.T) {
	c := newClient(t)
	teacher := c.registerInstructor("teacher")
	student := c.registerStudent("student")
	course, lessons := c.buildCourse(teacher)

	status, env := c.do("POST", "/api/v1/student/content/"+lessons[0]+"/progress", student, map[string]interface{}{"completed": true})
	assert.Equal(t, fiber.StatusForbidden, status, "progress needs an enrollment for non-free content")

	status, env = c.do("POST", "/api/v1/enrollment/courses/"+course+"/enroll", student, nil)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.Equal(t, "IN PROGRESS", env.Data["status"])
	assert.Equal(t, false, env.Data["deadline_reached"])

	status, env = c.do("POST", "/api/v1/enrollment/courses/"+course+"/enroll", student, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, false, env.Status)

	status, _ = c.do("POST", "/api/v1/enrollment/courses/no-such-course/enroll", student, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = c.do("POST", "/api/v1/student/content/"+lessons[0]+"/progress", student, map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	for _, lesson := range lessons {
		status, env = c.do("POST", "/api/v1/student/content/"+lesson+"/progress", student, map[string]interface{}{"completed": true})
		require.Equal(t, fiber.StatusOK, status, env.Message)
		assert.Equal(t, true, env.Data["completed"])
	}

	status, env = c.do("GET", "/api/v1/student/course/"+course+"/progress", student, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	progress := env.Data["progress"].(map[string]interface{})
	assert.Equal(t, true, progress["completed"])
	assert.EqualValues(t, 100, progress["progress_percentage"])
	modules := env.Data["modules"].([]interface{})
	require.Len(t, modules, 1)
	assert.Equal(t, true, modules[0].(map[string]interface{})["completed"])

	status, env = c.do("GET", "/api/v1/dashboard", student, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "student", env.Data["role"])
	stats := env.Data["statistics"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["totalCourses"])
	assert.EqualValues(t, 1, stats["completedCourses"])
	assert.EqualValues(t, 0, stats["inProgressCourses"])
	assert.EqualValues(t, 100, stats["averageProgress"])

	status, env = c.do("GET", "/api/v1/dashboard", teacher, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "teacher", env.Data["role"])
	stats = env.Data["statistics"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["activeCourses"])
	assert.EqualValues(t, 1, stats["totalStudents"])
	assert.EqualValues(t, 0, stats["totalRevenue"])
}

func TestOwnershipIsEnforced(t *testing.T) {
	c := newClient(t)
	owner := c.registerInstructor("owner")
	intruder := c.registerInstructor("intruder")
	student := c.registerStudent("student")
	course, lessons := c.buildCourse(owner)

	status, _ := c.do("PATCH", "/api/v1/content/courses/"+course, intruder, map[string]interface{}{"title": "Hijacked"})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = c.do("DELETE", "/api/v1/content/contents/"+lessons[0], intruder, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env := c.do("GET", "/api/v1/content/courses/"+course, owner, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Go Basics", env.Data["title"])

	status, _ = c.do("POST", "/api/v1/content/courses", student, map[string]interface{}{"title": "Nope"})
	assert.Equal(t, fiber.StatusForbidden, status, "students cannot author courses")

	status, _ = c.do("GET", "/api/v1/content/courses", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestContentTypeCannotChange(t *testing.T) {
	c := newClient(t)
	teacher := c.registerInstructor("teacher")
	_, lessons := c.buildCourse(teacher)

	status, env := c.do("PATCH", "/api/v1/content/contents/"+lessons[0], teacher, map[string]interface{}{"resourcetype": "VideoContent"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, env.Data, "resourcetype")

	status, env = c.do("PATCH", "/api/v1/content/contents/"+lessons[0], teacher, map[string]interface{}{"text": "new body", "order": 7})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Equal(t, "new body", env.Data["text"])
	assert.EqualValues(t, 7, env.Data["order"])
}

func TestCourseRenameAndDelete(t *testing.T) {
	c := newClient(t)
	teacher := c.registerInstructor("teacher")
	course, _ := c.buildCourse(teacher)

	status, env := c.do("PATCH", "/api/v1/content/courses/"+course, teacher, map[string]interface{}{"title": "Go Fundamentals", "price": 19.99})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Equal(t, "go-fundamentals", env.Data["slug"])
	assert.Equal(t, false, env.Data["is_free"])

	status, env = c.do("DELETE", "/api/v1/content/courses/go-fundamentals", teacher, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Go Fundamentals successfully deleted", env.Message)

	status, _ = c.do("GET", "/api/v1/content/courses/go-fundamentals", teacher, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestLoginRecordsHistory(t *testing.T) {
	c := newClient(t)
	c.registerStudent("student")

	status, env := c.do("POST", "/auth/login", "", map[string]interface{}{"email": "student@example.com", "password": "wrong-pass"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, env = c.do("POST", "/auth/login", "", map[string]interface{}{"username": "student", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	token := env.Data["token"].(string)

	status, env = c.do("GET", "/auth/login/history?page=1&limit=5", token, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	pagination := env.Data["pagination"].(map[string]interface{})
	assert.EqualValues(t, 1, pagination["total"])
	assert.Len(t, env.Data["loginTracking"], 1)
}

func TestChatHistoryEndpoint(t *testing.T) {
	c := newClient(t)
	token := c.registerStudent("student")

	var userID uint
	require.NoError(t, database.Database.Db.Table("users").Select("id").Where("username = ?", "student").Scan(&userID).Error)
	for _, text := range []string{"first", "second", "third"} {
		_, err := chat.SaveMessage(database.Database.Db, "lobby", userID, text)
		require.NoError(t, err)
	}

	req := httptest.NewRequest("GET", "/api/v1/chat/rooms/lobby/messages?limit=2", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []struct {
			Content string `json:"content"`
		} `json:"data"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, sonic.Unmarshal(raw, &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "second", body.Data[0].Content)
	assert.Equal(t, "third", body.Data[1].Content)

	// a plain GET on the socket endpoint is refused
	req = httptest.NewRequest("GET", "/ws/chat/lobby", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = c.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
