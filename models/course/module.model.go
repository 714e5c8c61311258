package course

import (
	"elearn/helpers"
	"elearn/models"

	"gorm.io/gorm"
)

// Module is an ordered section of a course.
type Module struct {
	models.Base
	CourseID    uint      `json:"course_id" gorm:"index;not null"`
	Course      *Course   `json:"-"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Slug        string    `json:"slug" gorm:"size:80;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Order       *int      `json:"order" gorm:"column:order_index;index"`
	Contents    []Content `json:"contents,omitempty"`
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.Slug == "" {
		slug, err := helpers.GenerateUniqueSlug(tx.Session(&gorm.Session{NewDB: true}), "modules", "slug", m.Title, "module", 0)
		if err != nil {
			return err
		}
		m.Slug = slug
	}
	return moduleOrder.assign(tx, m.CourseID, &m.Order)
}
