package course

import (
	"elearn/helpers"
	"elearn/models"

	"gorm.io/gorm"
)

// Subject groups courses. Deleting a subject deletes its courses.
type Subject struct {
	models.Base
	Title   string   `json:"title" gorm:"size:200;not null"`
	Slug    string   `json:"slug" gorm:"size:200;uniqueIndex;not null"`
	Courses []Course `json:"courses,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	if s.Slug != "" {
		return nil
	}
	slug, err := helpers.GenerateUniqueSlug(tx.Session(&gorm.Session{NewDB: true}), "subjects", "slug", s.Title, "subject", 0)
	if err != nil {
		return err
	}
	s.Slug = slug
	return nil
}
