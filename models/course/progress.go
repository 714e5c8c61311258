package course

import (
	"fmt"
	"time"

	"elearn/models"

	"gorm.io/gorm"
)

// CourseProgress is one row per (student, course).
type CourseProgress struct {
	models.Base
	StudentID          uint       `json:"student" gorm:"uniqueIndex:idx_course_progress_student_course;not null"`
	CourseID           uint       `json:"course" gorm:"uniqueIndex:idx_course_progress_student_course;not null"`
	Course             *Course    `json:"-"`
	StartedAt          time.Time  `json:"started_at" gorm:"autoCreateTime"`
	LastAccessed       time.Time  `json:"last_accessed"`
	Completed          bool       `json:"completed" gorm:"default:false"`
	CompletedAt        *time.Time `json:"completed_at"`
	ProgressPercentage float64    `json:"progress_percentage" gorm:"-"`
}

// ContentProgress is one row per (student, content). Completion is one-way.
type ContentProgress struct {
	models.Base
	StudentID    uint       `json:"student" gorm:"uniqueIndex:idx_content_progress_student_content;not null"`
	ContentID    uint       `json:"content" gorm:"uniqueIndex:idx_content_progress_student_content;not null"`
	Content      *Content   `json:"-"`
	Completed    bool       `json:"completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at"`
	LastPosition float64    `json:"last_position" gorm:"default:0"`
	LastAccessed time.Time  `json:"last_accessed"`
}

func GetOrCreateCourseProgress(db *gorm.DB, studentID, courseID uint) (*CourseProgress, error) {
	var cp CourseProgress
	err := db.Where(CourseProgress{StudentID: studentID, CourseID: courseID}).
		Attrs(CourseProgress{LastAccessed: time.Now()}).
		FirstOrCreate(&cp).Error
	if err != nil {
		return nil, fmt.Errorf("course progress for student %d course %d: %w", studentID, courseID, err)
	}
	return &cp, nil
}

func GetOrCreateContentProgress(db *gorm.DB, studentID, contentID uint) (*ContentProgress, error) {
	var cp ContentProgress
	err := db.Where(ContentProgress{StudentID: studentID, ContentID: contentID}).
		Attrs(ContentProgress{LastAccessed: time.Now()}).
		FirstOrCreate(&cp).Error
	if err != nil {
		return nil, fmt.Errorf("content progress for student %d content %d: %w", studentID, contentID, err)
	}
	return &cp, nil
}

// Percentage is 100*completed/total, or 0 for an empty course.
func Percentage(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(completed) / float64(total)
}

// ProgressPercentage counts the student's completed contents against all contents of the course.
func ProgressPercentage(db *gorm.DB, studentID, courseID uint) (float64, error) {
	var total int64
	if err := db.Model(&Content{}).
		Joins("JOIN modules ON modules.id = contents.module_id").
		Where("modules.course_id = ?", courseID).
		Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	var completed int64
	if err := db.Model(&ContentProgress{}).
		Joins("JOIN contents ON contents.id = content_progresses.content_id").
		Joins("JOIN modules ON modules.id = contents.module_id").
		Where("modules.course_id = ? AND content_progresses.student_id = ? AND content_progresses.completed = ?", courseID, studentID, true).
		Count(&completed).Error; err != nil {
		return 0, err
	}
	return Percentage(completed, total), nil
}

// moduleCompleted reports whether every content of the module has a completed progress row.
// A module without contents counts as completed.
func moduleCompleted(tx *gorm.DB, studentID, moduleID uint) (bool, error) {
	var total, done int64
	if err := tx.Model(&Content{}).Where("module_id = ?", moduleID).Count(&total).Error; err != nil {
		return false, err
	}
	if err := tx.Model(&ContentProgress{}).
		Joins("JOIN contents ON contents.id = content_progresses.content_id").
		Where("contents.module_id = ? AND content_progresses.student_id = ? AND content_progresses.completed = ?", moduleID, studentID, true).
		Count(&done).Error; err != nil {
		return false, err
	}
	return done >= total, nil
}

func courseCompleted(tx *gorm.DB, studentID, courseID uint) (bool, error) {
	var moduleIDs []uint
	if err := tx.Model(&Module{}).Where("course_id = ?", courseID).Pluck("id", &moduleIDs).Error; err != nil {
		return false, err
	}
	for _, id := range moduleIDs {
		ok, err := moduleCompleted(tx, studentID, id)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// MarkAsCompleted completes the content for the student and rolls completion up to the module
// and course. Completing an already completed content changes nothing. The whole roll-up runs in
// one transaction. It reports whether the course became completed by this call.
func MarkAsCompleted(db *gorm.DB, studentID uint, content *Content, at time.Time) (*ContentProgress, bool, error) {
	var (
		progress *ContentProgress
		finished bool
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		cp, err := GetOrCreateContentProgress(tx, studentID, content.ID)
		if err != nil {
			return err
		}
		progress = cp
		if cp.Completed {
			return nil
		}

		cp.Completed = true
		cp.CompletedAt = &at
		cp.LastAccessed = at
		if err := tx.Save(cp).Error; err != nil {
			return fmt.Errorf("save content progress: %w", err)
		}

		done, err := moduleCompleted(tx, studentID, content.ModuleID)
		if err != nil || !done {
			return err
		}

		var module Module
		if err := tx.Select("id", "course_id").First(&module, content.ModuleID).Error; err != nil {
			return fmt.Errorf("load module %d: %w", content.ModuleID, err)
		}
		finished, err = completeCourseIfDone(tx, studentID, module.CourseID, at)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return progress, finished, nil
}

func completeCourseIfDone(tx *gorm.DB, studentID, courseID uint, at time.Time) (bool, error) {
	done, err := courseCompleted(tx, studentID, courseID)
	if err != nil || !done {
		return false, err
	}

	cp, err := GetOrCreateCourseProgress(tx, studentID, courseID)
	if err != nil {
		return false, err
	}
	if cp.Completed {
		return false, nil
	}
	cp.Completed = true
	cp.CompletedAt = &at
	if err := tx.Save(cp).Error; err != nil {
		return false, fmt.Errorf("save course progress: %w", err)
	}

	if err := tx.Model(&Enrollment{}).
		Where("user_id = ? AND course_id = ?", studentID, courseID).
		Update("status", StatusCompleted).Error; err != nil {
		return false, fmt.Errorf("complete enrollment: %w", err)
	}
	return true, nil
}

// UpdateLastPosition stores the resume position for media playback.
func UpdateLastPosition(db *gorm.DB, studentID, contentID uint, position float64) (*ContentProgress, error) {
	cp, err := GetOrCreateContentProgress(db, studentID, contentID)
	if err != nil {
		return nil, err
	}
	cp.LastPosition = position
	cp.LastAccessed = time.Now()
	if err := db.Save(cp).Error; err != nil {
		return nil, err
	}
	return cp, nil
}
