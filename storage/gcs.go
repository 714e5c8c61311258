package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"elearn/config"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	client *gcstorage.Client
	bucket string
}

func NewGCS(ctx context.Context, cfg *config.Config) (*GCS, error) {
	if cfg.GCSBucket == "" {
		return nil, fmt.Errorf("missing env: GCS_BUCKET")
	}
	var opts []option.ClientOption
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}
	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCS{client: client, bucket: cfg.GCSBucket}, nil
}

func (g *GCS) Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (*UploadResult, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	mime := detect(src)

	key := objectKey(folder, fh.Filename)
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = mime
	n, err := io.Copy(w, src)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gcs close %s: %w", key, err)
	}

	return &UploadResult{
		URL:      fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key),
		PublicID: key,
		Size:     n,
		MIME:     mime,
	}, nil
}

func (g *GCS) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	err := g.client.Bucket(g.bucket).Object(publicID).Delete(ctx)
	if errors.Is(err, gcstorage.ErrObjectNotExist) {
		return nil
	}
	return err
}
