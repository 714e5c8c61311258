package course

import "elearn/models"

type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

func (m MediaType) Valid() bool {
	return m == MediaImage || m == MediaVideo || m == MediaDocument
}

// CourseMedia is a file attached to a course outside the module/content tree.
type CourseMedia struct {
	models.Base
	CourseID     uint      `json:"course_id" gorm:"index;not null"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	MediaType    MediaType `json:"media_type" gorm:"size:20;not null"`
	FileURL      string    `json:"file_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	PublicID     string    `json:"-"`
	Size         int64     `json:"size"`
}
