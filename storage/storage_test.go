package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"elearn/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// fileHeader builds a multipart.FileHeader the same way fiber does when parsing a form.
func fileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestValidateFile(t *testing.T) {
	mime, err := ValidateFile(fileHeader(t, "image_file", "pic.png", pngHeader), 1)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = ValidateFile(fileHeader(t, "file", "notes.txt", []byte("plain words")), 1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "not allowed")

	big := fileHeader(t, "file", "big.png", append(pngHeader, make([]byte, 2*1024*1024)...))
	_, err = ValidateFile(big, 1)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "1MB")

	_, err = ValidateFile(nil, 1)
	require.ErrorAs(t, err, &verr)
}

func TestLocalUploadAndDelete(t *testing.T) {
	cfg := config.Default()
	cfg.MediaRoot = t.TempDir()
	cfg.MediaURL = "/uploads/"
	p := NewLocal(cfg)

	res, err := p.Upload(context.Background(), fileHeader(t, "image_file", "Pic.PNG", pngHeader), "images")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.PublicID, "images/"))
	assert.True(t, strings.HasSuffix(res.PublicID, ".png"))
	assert.Equal(t, "/uploads/"+res.PublicID, res.URL)
	assert.Equal(t, "image/png", res.MIME)
	assert.EqualValues(t, len(pngHeader), res.Size)

	path := filepath.Join(cfg.MediaRoot, filepath.FromSlash(res.PublicID))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, written)

	require.NoError(t, p.Delete(context.Background(), res.PublicID))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, p.Delete(context.Background(), res.PublicID), "deleting twice is fine")
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.StorageProvider = "ftp"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
