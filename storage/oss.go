package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"elearn/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSS stores objects in an Alibaba Cloud OSS bucket.
type OSS struct {
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
}

func NewOSS(cfg *config.Config) (*OSS, error) {
	if cfg.OSSEndpoint == "" || cfg.OSSAccessKeyID == "" || cfg.OSSAccessKeySecret == "" || cfg.OSSBucket == "" {
		return nil, fmt.Errorf("missing env: OSS_ENDPOINT/ACCESS_KEY_ID/ACCESS_KEY_SECRET/BUCKET")
	}
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKeyID, cfg.OSSAccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	return &OSS{bucket: bkt, endpoint: cfg.OSSEndpoint, bucketName: cfg.OSSBucket}, nil
}

func (o *OSS) publicURL(key string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(o.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", o.bucketName, host, key)
}

func (o *OSS) Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (*UploadResult, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	mime := detect(src)

	key := objectKey(folder, fh.Filename)
	if err := o.bucket.PutObject(key, src, oss.ContentType(mime)); err != nil {
		return nil, fmt.Errorf("oss put %s: %w", key, err)
	}
	return &UploadResult{URL: o.publicURL(key), PublicID: key, Size: fh.Size, MIME: mime}, nil
}

func (o *OSS) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	return o.bucket.DeleteObject(publicID)
}
