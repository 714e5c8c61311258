package course

import (
	"time"

	"elearn/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	StatusInProgress      EnrollmentStatus = "IN PROGRESS"
	StatusCompleted       EnrollmentStatus = "COMPLETED"
	StatusReachedDeadline EnrollmentStatus = "REACHED DEADLINE"
)

// Enrollment ties a user to a course until Deadline. The deadline is fixed at creation.
type Enrollment struct {
	models.Base
	UserID          uint             `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	User            *models.User     `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CourseID        uint             `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	Course          *Course          `json:"course,omitempty"`
	Started         datatypes.Date   `json:"started"`
	Deadline        datatypes.Date   `json:"deadline"`
	Status          EnrollmentStatus `json:"status" gorm:"size:20;default:'IN PROGRESS';index"`
	DeadlineReached bool             `json:"deadline_reached" gorm:"-"`
}

// NewEnrollment starts an enrollment on the calendar day of today.
func NewEnrollment(userID uint, c Course, today time.Time) Enrollment {
	start := civilDate(today)
	return Enrollment{
		UserID:   userID,
		CourseID: c.ID,
		Started:  datatypes.Date(start),
		Deadline: datatypes.Date(start.AddDate(0, 0, c.RequiredTime)),
		Status:   StatusInProgress,
	}
}

// IsDeadlineReached reports whether today is on or after the deadline day.
func (e *Enrollment) IsDeadlineReached(today time.Time) bool {
	return !civilDate(today).Before(civilDate(time.Time(e.Deadline)))
}

func (e *Enrollment) AfterFind(tx *gorm.DB) error {
	e.DeadlineReached = e.IsDeadlineReached(time.Now())
	return nil
}

// civilDate drops the clock and zone, keeping only the calendar day.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
