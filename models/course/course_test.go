package course_test

import (
	"strings"
	"testing"

	"elearn/database"
	"elearn/models"
	"elearn/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	instructor models.User
	student    models.User
	subject    course.Subject
	course     course.Course
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite("course_" + strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)

	f := &fixture{db: db}
	f.instructor = models.User{Username: "teacher", Email: "teacher@example.com", Password: "x", Instructor: &models.Instructor{Bio: "bio"}}
	require.NoError(t, db.Create(&f.instructor).Error)
	f.student = models.User{Username: "student", Email: "student@example.com", Password: "x", Student: &models.Student{}}
	require.NoError(t, db.Create(&f.student).Error)

	f.subject = course.Subject{Title: "Programming"}
	require.NoError(t, db.Create(&f.subject).Error)
	f.course = f.newCourse(t, "Go Basics", 0)
	return f
}

func (f *fixture) newCourse(t *testing.T, title string, price float64) course.Course {
	t.Helper()
	c := course.Course{
		Title:        title,
		Price:        price,
		SubjectID:    f.subject.ID,
		RequiredTime: 10,
		Summary:      "summary",
		OwnerID:      f.instructor.ID,
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) newModule(t *testing.T, courseID uint, title string) course.Module {
	t.Helper()
	m := course.Module{CourseID: courseID, Title: title}
	require.NoError(t, f.db.Create(&m).Error)
	return m
}

func (f *fixture) newText(t *testing.T, moduleID uint, title string) course.Content {
	t.Helper()
	c := course.Content{
		ModuleID:     moduleID,
		OwnerID:      f.instructor.ID,
		ResourceType: course.ResourceText,
		Title:        title,
		Text:         "body of " + title,
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func TestCourseSlugIsDerivedAndUnique(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "go-basics", f.course.Slug)
	assert.True(t, f.course.IsFree)

	other := f.newCourse(t, "Go  Basics!", 49.5)
	assert.Equal(t, "go-basics-2", other.Slug)

	var loaded course.Course
	require.NoError(t, f.db.First(&loaded, other.ID).Error)
	assert.False(t, loaded.IsFree)
}

func TestCourseRenameTracksTitle(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.course.Rename(f.db, "Advanced Go"))
	require.NoError(t, f.db.Save(&f.course).Error)

	var loaded course.Course
	require.NoError(t, f.db.First(&loaded, f.course.ID).Error)
	assert.Equal(t, "Advanced Go", loaded.Title)
	assert.Equal(t, "advanced-go", loaded.Slug)
}

func TestSubjectSlug(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "programming", f.subject.Slug)
}
