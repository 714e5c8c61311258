package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"elearn/config"
)

// Local writes uploads under MEDIA_ROOT and serves them from MEDIA_URL.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(cfg *config.Config) *Local {
	return &Local{root: cfg.MediaRoot, baseURL: strings.TrimRight(cfg.MediaURL, "/")}
}

func (l *Local) Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (*UploadResult, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	mime := detect(src)

	key := objectKey(folder, fh.Filename)
	path := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	dst, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", key, err)
	}

	return &UploadResult{
		URL:      l.baseURL + "/" + key,
		PublicID: key,
		Size:     n,
		MIME:     mime,
	}, nil
}

func (l *Local) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(publicID)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
