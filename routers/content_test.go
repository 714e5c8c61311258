package routers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"

	"elearn/database"
	courseModels "elearn/models/course"
	"elearn/storage"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// flakyProvider records uploads and deletes and fails uploads on demand.
type flakyProvider struct {
	mu      sync.Mutex
	fail    bool
	n       int
	deleted []string
}

func (p *flakyProvider) Upload(_ context.Context, fh *multipart.FileHeader, _ string) (*storage.UploadResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return nil, errors.New("bucket unavailable")
	}
	p.n++
	id := fmt.Sprintf("obj-%d", p.n)
	return &storage.UploadResult{URL: "https://cdn/" + id + ".png", PublicID: id, Size: fh.Size, MIME: "image/png"}, nil
}

func (p *flakyProvider) Delete(_ context.Context, publicID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, publicID)
	return nil
}

func (p *flakyProvider) setFail(v bool) {
	p.mu.Lock()
	p.fail = v
	p.mu.Unlock()
}

func (p *flakyProvider) deletedIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.deleted...)
}

func (c client) multipart(method, path, token string, fields map[string]string, fileField string, file []byte) (int, envelope) {
	c.t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, "pic.png")
		require.NoError(c.t, err)
		_, err = part.Write(file)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	var env envelope
	require.NoError(c.t, sonic.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestFailedReplacementKeepsStoredFile(t *testing.T) {
	c := newClient(t)
	provider := &flakyProvider{}
	prev := storage.Default
	storage.Default = provider
	t.Cleanup(func() { storage.Default = prev })

	teacher := c.registerInstructor("teacher")
	course, _ := c.buildCourse(teacher)
	status, env := c.do("POST", "/api/v1/content/course/"+course+"/create_module", teacher, map[string]interface{}{"title": "Diagrams"})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	module := env.Data["slug"].(string)

	status, env = c.multipart("POST", "/api/v1/content/module/"+module+"/content", teacher,
		map[string]string{"resourcetype": "ImageContent", "title": "Architecture"}, "image_file", pngBytes)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	slug := env.Data["slug"].(string)
	assert.Equal(t, "https://cdn/obj-1.png", env.Data["image_file"])

	stored := func() courseModels.Content {
		var content courseModels.Content
		require.NoError(t, database.Database.Db.Where("slug = ?", slug).First(&content).Error)
		return content
	}

	provider.setFail(true)
	status, env = c.multipart("PATCH", "/api/v1/content/contents/"+slug, teacher, nil, "image_file", pngBytes)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Failed to upload file", env.Message)
	assert.Empty(t, provider.deletedIDs(), "the current file must survive a failed upload")
	row := stored()
	assert.Equal(t, "obj-1", row.PublicID)
	assert.Equal(t, "https://cdn/obj-1.png", row.ImageFile)

	provider.setFail(false)
	status, env = c.multipart("PATCH", "/api/v1/content/contents/"+slug, teacher, nil, "image_file", pngBytes)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Equal(t, "https://cdn/obj-2.png", env.Data["image_file"])
	assert.Equal(t, []string{"obj-1"}, provider.deletedIDs())
	assert.Equal(t, "obj-2", stored().PublicID)
}
