package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
	"time"

	"elearn/config"

	"github.com/go-resty/resty/v2"
)

const cloudinaryAPI = "https://api.cloudinary.com/v1_1"

// Cloudinary uploads through the signed REST API. PublicIDs are stored as "<resource_type>:<public_id>"
// since destroy needs the resource type.
type Cloudinary struct {
	client    *resty.Client
	cloudName string
	apiKey    string
	apiSecret string
}

type cloudinaryUpload struct {
	SecureURL    string `json:"secure_url"`
	PublicID     string `json:"public_id"`
	Bytes        int64  `json:"bytes"`
	ResourceType string `json:"resource_type"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewCloudinary(cfg *config.Config) (*Cloudinary, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("missing env: CLOUDINARY_CLOUD_NAME/API_KEY/API_SECRET")
	}
	return &Cloudinary{
		client:    resty.New().SetTimeout(2 * time.Minute),
		cloudName: cfg.CloudinaryCloudName,
		apiKey:    cfg.CloudinaryAPIKey,
		apiSecret: cfg.CloudinaryAPISecret,
	}, nil
}

// sign implements Cloudinary's signature: sha1 of the sorted params joined with & plus the secret.
func (c *Cloudinary) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

func (c *Cloudinary) signedForm(params map[string]string) map[string]string {
	params["timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)
	form := map[string]string{"signature": c.sign(params), "api_key": c.apiKey}
	for k, v := range params {
		form[k] = v
	}
	return form
}

func (c *Cloudinary) Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (*UploadResult, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	mime := detect(src)

	var out cloudinaryUpload
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", fh.Filename, src).
		SetFormData(c.signedForm(map[string]string{"folder": folder})).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("%s/%s/auto/upload", cloudinaryAPI, c.cloudName))
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if out.Error != nil {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("cloudinary upload: %s", msg)
	}

	res := &UploadResult{
		URL:      out.SecureURL,
		PublicID: out.ResourceType + ":" + out.PublicID,
		Size:     out.Bytes,
		MIME:     mime,
	}
	if out.ResourceType == "video" {
		res.ThumbnailURL = fmt.Sprintf("https://res.cloudinary.com/%s/video/upload/%s.jpg", c.cloudName, out.PublicID)
	}
	return res, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	resourceType, id, ok := strings.Cut(publicID, ":")
	if !ok {
		resourceType, id = "image", publicID
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(c.signedForm(map[string]string{"public_id": id})).
		Post(fmt.Sprintf("%s/%s/%s/destroy", cloudinaryAPI, c.cloudName, resourceType))
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("cloudinary destroy: %s", resp.Status())
	}
	return nil
}
