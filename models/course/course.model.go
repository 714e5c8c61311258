package course

import (
	"elearn/helpers"
	"elearn/models"

	"gorm.io/gorm"
)

// Course is owned by the instructor who created it. Slug is derived from the title.
type Course struct {
	models.Base
	Title             string       `json:"title" gorm:"size:200;uniqueIndex;not null"`
	Slug              string       `json:"slug" gorm:"size:80;uniqueIndex;not null"`
	Price             float64      `json:"price" gorm:"type:decimal(10,2);default:0"`
	IsFree            bool         `json:"is_free" gorm:"-"`
	SubjectID         uint         `json:"subject_id" gorm:"index;not null"`
	Subject           *Subject     `json:"subject,omitempty"`
	RequiredTime      int          `json:"required_time" gorm:"not null"` // days
	Summary           string       `json:"summary" gorm:"type:text"`
	Thumbnail         string       `json:"thumbnail"`
	ThumbnailPublicID string       `json:"-"`
	OwnerID           uint         `json:"owner_id" gorm:"index;not null"`
	Owner             *models.User `json:"owner,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Modules           []Module     `json:"modules,omitempty"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.Slug != "" {
		return nil
	}
	slug, err := helpers.GenerateUniqueSlug(tx.Session(&gorm.Session{NewDB: true}), "courses", "slug", c.Title, "course", 0)
	if err != nil {
		return err
	}
	c.Slug = slug
	return nil
}

func (c *Course) AfterFind(tx *gorm.DB) error {
	c.IsFree = c.Price == 0
	return nil
}

func (c *Course) AfterSave(tx *gorm.DB) error {
	c.IsFree = c.Price == 0
	return nil
}

// Rename changes the title and re-derives the slug so it keeps tracking the title.
func (c *Course) Rename(db *gorm.DB, title string) error {
	slug, err := helpers.GenerateUniqueSlug(db, "courses", "slug", title, "course", c.ID)
	if err != nil {
		return err
	}
	c.Title = title
	c.Slug = slug
	return nil
}
