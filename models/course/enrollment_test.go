package course_test

import (
	"errors"
	"testing"
	"time"

	"elearn/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewEnrollmentDeadline(t *testing.T) {
	today := time.Date(2025, 1, 30, 18, 45, 0, 0, time.UTC)
	e := course.NewEnrollment(7, course.Course{RequiredTime: 10}, today)

	assert.Equal(t, "2025-01-30", time.Time(e.Started).Format("2006-01-02"))
	assert.Equal(t, "2025-02-09", time.Time(e.Deadline).Format("2006-01-02"))
	assert.Equal(t, course.StatusInProgress, e.Status)
}

func TestIsDeadlineReached(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e := course.NewEnrollment(1, course.Course{RequiredTime: 10}, start)

	assert.False(t, e.IsDeadlineReached(start))
	assert.False(t, e.IsDeadlineReached(start.AddDate(0, 0, 9).Add(23*time.Hour)))
	assert.True(t, e.IsDeadlineReached(start.AddDate(0, 0, 10)))
	assert.True(t, e.IsDeadlineReached(start.AddDate(0, 0, 30)))
}

func TestEnrollmentIsUniquePerCourse(t *testing.T) {
	f := newFixture(t)

	first := course.NewEnrollment(f.student.ID, f.course, time.Now())
	require.NoError(t, f.db.Create(&first).Error)

	second := course.NewEnrollment(f.student.ID, f.course, time.Now())
	err := f.db.Create(&second).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	other := f.newCourse(t, "Rust Basics", 0)
	third := course.NewEnrollment(f.student.ID, other, time.Now())
	require.NoError(t, f.db.Create(&third).Error)
}

func TestLoadedEnrollmentReportsDeadline(t *testing.T) {
	f := newFixture(t)
	past := course.NewEnrollment(f.student.ID, f.course, time.Now().AddDate(0, 0, -20))
	require.NoError(t, f.db.Create(&past).Error)

	var loaded course.Enrollment
	require.NoError(t, f.db.First(&loaded, past.ID).Error)
	assert.True(t, loaded.DeadlineReached)
}
