package course

import (
	"fmt"
	"time"

	"elearn/helpers"
	"elearn/models"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// ResourceType is the discriminant selecting which payload a Content carries.
type ResourceType string

const (
	ResourceText  ResourceType = "TextContent"
	ResourceVideo ResourceType = "VideoContent"
	ResourceImage ResourceType = "ImageContent"
	ResourceFile  ResourceType = "FileContent"
)

func (r ResourceType) Valid() bool {
	switch r {
	case ResourceText, ResourceVideo, ResourceImage, ResourceFile:
		return true
	}
	return false
}

// PayloadField is the request field (and JSON key) holding the variant's payload.
func (r ResourceType) PayloadField() string {
	switch r {
	case ResourceVideo:
		return "video_file"
	case ResourceImage:
		return "image_file"
	case ResourceFile:
		return "file"
	case ResourceText:
		return "text"
	}
	return ""
}

// IsUpload reports whether the payload arrives as an uploaded file.
func (r ResourceType) IsUpload() bool {
	return r == ResourceVideo || r == ResourceImage || r == ResourceFile
}

// PayloadFields lists every variant payload field.
var PayloadFields = []string{"text", "video_file", "image_file", "file"}

// Content is stored in one table. ResourceType tags the row and exactly one payload column is set.
type Content struct {
	models.Base
	ModuleID     uint         `gorm:"index;not null"`
	Module       *Module
	OwnerID      uint         `gorm:"index;not null"`
	ResourceType ResourceType `gorm:"column:resourcetype;size:20;not null"`
	Title        string       `gorm:"size:250;not null"`
	Slug         string       `gorm:"size:80;uniqueIndex;not null"`
	IsFree       bool         `gorm:"default:false"`
	Order        *int         `gorm:"column:order_index;index"`

	Text         string `gorm:"type:text"`
	VideoFile    string
	ThumbnailURL string
	ImageFile    string
	File         string
	FileSize     int64
	PublicID     string // storage reference of the uploaded payload
}

func (c *Content) payload(field string) string {
	switch field {
	case "text":
		return c.Text
	case "video_file":
		return c.VideoFile
	case "image_file":
		return c.ImageFile
	case "file":
		return c.File
	}
	return ""
}

// Validate checks that only the payload matching the discriminant is populated.
func (c *Content) Validate() error {
	if !c.ResourceType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownResourceType, c.ResourceType)
	}
	want := c.ResourceType.PayloadField()
	for _, field := range PayloadFields {
		if field != want && c.payload(field) != "" {
			return fmt.Errorf("%w: %s is not allowed for %s", ErrPayloadMismatch, field, c.ResourceType)
		}
	}
	if c.payload(want) == "" {
		return fmt.Errorf("%w: %s is required", ErrPayloadMissing, want)
	}
	return nil
}

func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Slug == "" {
		slug, err := helpers.GenerateUniqueSlug(tx.Session(&gorm.Session{NewDB: true}), "contents", "slug", c.Title, "content", 0)
		if err != nil {
			return err
		}
		c.Slug = slug
	}
	return contentOrder.assign(tx, c.ModuleID, &c.Order)
}

// MarshalJSON exposes the shared fields plus only the fields of the concrete variant.
func (c Content) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"id":           c.ID,
		"resourcetype": c.ResourceType,
		"module":       c.ModuleID,
		"owner":        c.OwnerID,
		"title":        c.Title,
		"slug":         c.Slug,
		"is_free":      c.IsFree,
		"order":        c.Order,
		"created":      c.CreatedAt.Format(time.RFC3339),
		"updated":      c.UpdatedAt.Format(time.RFC3339),
	}
	switch c.ResourceType {
	case ResourceText:
		out["text"] = c.Text
	case ResourceVideo:
		out["video_file"] = c.VideoFile
		out["thumbnail_url"] = c.ThumbnailURL
	case ResourceImage:
		out["image_file"] = c.ImageFile
	case ResourceFile:
		out["file"] = c.File
		out["file_size"] = c.FileSize
	}
	return sonic.Marshal(out)
}
