package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"elearn/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// UploadResult describes a stored object. PublicID is the handle used to delete or replace it.
type UploadResult struct {
	URL          string `json:"url"`
	PublicID     string `json:"public_id"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Size         int64  `json:"file_size"`
	MIME         string `json:"mime"`
}

// Provider stores uploaded payloads outside the database.
type Provider interface {
	Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// Default is the provider used by request handlers.
var Default Provider = NewLocal(config.Default())

// AllowedMIMETypes is the upload allow-list.
var AllowedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"video/mp4",
	"video/webm",
	"application/pdf",
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ValidateFile enforces the size limit and sniffs the content against the allow-list.
func ValidateFile(fh *multipart.FileHeader, maxMB int) (string, error) {
	if fh == nil {
		return "", &ValidationError{Reason: "No file provided"}
	}
	if max := int64(maxMB) * 1024 * 1024; fh.Size > max {
		return "", &ValidationError{Reason: fmt.Sprintf("File size exceeds the maximum limit of %dMB", maxMB)}
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect mime: %w", err)
	}
	if !mimetype.EqualsAny(mt.String(), AllowedMIMETypes...) {
		return "", &ValidationError{Reason: fmt.Sprintf("File type %s is not allowed", mt.String())}
	}
	return mt.String(), nil
}

// New builds the provider selected by STORAGE_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch strings.ToLower(cfg.StorageProvider) {
	case "", "local":
		return NewLocal(cfg), nil
	case "cloudinary":
		return NewCloudinary(cfg)
	case "oss":
		return NewOSS(cfg)
	case "gcs":
		return NewGCS(ctx, cfg)
	}
	return nil, fmt.Errorf("unsupported STORAGE_PROVIDER %q", cfg.StorageProvider)
}

// objectKey builds a collision-free key under folder, keeping the original extension.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := time.Now().Format("20060102150405") + "-" + uuid.NewString() + ext
	if folder == "" {
		return name
	}
	return strings.Trim(folder, "/") + "/" + name
}

// detect reads the head of r to find its MIME type, then rewinds r.
func detect(r io.ReadSeeker) string {
	mt, err := mimetype.DetectReader(r)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil || err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
