package course_test

import (
	"testing"
	"time"

	"elearn/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteCourseRemovesTree(t *testing.T) {
	f := newFixture(t)
	m := f.newModule(t, f.course.ID, "M")
	a := f.newText(t, m.ID, "a")
	video := course.Content{
		ModuleID:     m.ID,
		OwnerID:      f.instructor.ID,
		ResourceType: course.ResourceVideo,
		Title:        "clip",
		VideoFile:    "/uploads/clip.mp4",
		PublicID:     "videos/clip.mp4",
	}
	require.NoError(t, f.db.Create(&video).Error)
	require.NoError(t, f.db.Create(&course.CourseMedia{
		CourseID: f.course.ID, Title: "poster", MediaType: course.MediaImage, PublicID: "media/poster.png",
	}).Error)

	enrollment := course.NewEnrollment(f.student.ID, f.course, time.Now())
	require.NoError(t, f.db.Create(&enrollment).Error)
	_, _, err := course.MarkAsCompleted(f.db, f.student.ID, &a, time.Now())
	require.NoError(t, err)

	ids, err := course.DeleteCourse(f.db, &f.course)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"videos/clip.mp4", "media/poster.png"}, ids)

	for _, model := range []interface{}{
		&course.Course{}, &course.Module{}, &course.Content{}, &course.CourseMedia{},
		&course.Enrollment{}, &course.CourseProgress{}, &course.ContentProgress{},
	} {
		var n int64
		require.NoError(t, f.db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T left behind", model)
	}

	var subjects int64
	require.NoError(t, f.db.Model(&course.Subject{}).Count(&subjects).Error)
	assert.EqualValues(t, 1, subjects)
}

func TestDeleteModuleKeepsSiblings(t *testing.T) {
	f := newFixture(t)
	gone := f.newModule(t, f.course.ID, "Gone")
	kept := f.newModule(t, f.course.ID, "Kept")
	f.newText(t, gone.ID, "a")
	b := f.newText(t, kept.ID, "b")

	_, err := course.DeleteModule(f.db, gone.ID)
	require.NoError(t, err)

	var contents []course.Content
	require.NoError(t, f.db.Find(&contents).Error)
	require.Len(t, contents, 1)
	assert.Equal(t, b.ID, contents[0].ID)
}
