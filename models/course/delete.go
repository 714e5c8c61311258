package course

import (
	"fmt"

	"gorm.io/gorm"
)

// Deletes are explicit: children first, then the row itself. Each returns the storage
// references of the rows it removed so the caller can clean up uploaded objects.

func DeleteContent(tx *gorm.DB, content *Content) ([]string, error) {
	if err := tx.Where("content_id = ?", content.ID).Delete(&ContentProgress{}).Error; err != nil {
		return nil, fmt.Errorf("delete content progress: %w", err)
	}
	if err := tx.Delete(content).Error; err != nil {
		return nil, fmt.Errorf("delete content: %w", err)
	}
	return nonEmpty(content.PublicID), nil
}

func DeleteModule(tx *gorm.DB, moduleID uint) ([]string, error) {
	var publicIDs []string
	if err := tx.Model(&Content{}).Where("module_id = ?", moduleID).Pluck("public_id", &publicIDs).Error; err != nil {
		return nil, err
	}
	contentIDs := tx.Model(&Content{}).Select("id").Where("module_id = ?", moduleID)
	if err := tx.Where("content_id IN (?)", contentIDs).Delete(&ContentProgress{}).Error; err != nil {
		return nil, fmt.Errorf("delete content progress: %w", err)
	}
	if err := tx.Where("module_id = ?", moduleID).Delete(&Content{}).Error; err != nil {
		return nil, fmt.Errorf("delete contents: %w", err)
	}
	if err := tx.Delete(&Module{}, moduleID).Error; err != nil {
		return nil, fmt.Errorf("delete module: %w", err)
	}
	return nonEmpty(publicIDs...), nil
}

// DeleteCourse removes the course with its modules, contents, progress, enrollments and media.
func DeleteCourse(tx *gorm.DB, c *Course) ([]string, error) {
	var moduleIDs []uint
	if err := tx.Model(&Module{}).Where("course_id = ?", c.ID).Pluck("id", &moduleIDs).Error; err != nil {
		return nil, err
	}

	publicIDs := nonEmpty(c.ThumbnailPublicID)
	for _, id := range moduleIDs {
		ids, err := DeleteModule(tx, id)
		if err != nil {
			return nil, err
		}
		publicIDs = append(publicIDs, ids...)
	}

	var mediaIDs []string
	if err := tx.Model(&CourseMedia{}).Where("course_id = ?", c.ID).Pluck("public_id", &mediaIDs).Error; err != nil {
		return nil, err
	}
	publicIDs = append(publicIDs, nonEmpty(mediaIDs...)...)

	for _, model := range []interface{}{&CourseMedia{}, &CourseProgress{}, &Enrollment{}} {
		if err := tx.Where("course_id = ?", c.ID).Delete(model).Error; err != nil {
			return nil, fmt.Errorf("delete %T: %w", model, err)
		}
	}
	if err := tx.Delete(c).Error; err != nil {
		return nil, fmt.Errorf("delete course: %w", err)
	}
	return publicIDs, nil
}

func nonEmpty(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
