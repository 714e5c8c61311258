package controllers

import (
	"elearn/database"
	"elearn/middleware"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func isEnrolled(db *gorm.DB, userID, courseID uint) bool {
	var n int64
	db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND course_id = ?", userID, courseID).Count(&n)
	return n > 0
}

// canAccess reports whether the student may read the content's payload.
func canAccess(db *gorm.DB, userID uint, content *courseModels.Content) bool {
	return content.IsFree || isEnrolled(db, userID, content.Module.CourseID)
}

// lockPayload blanks the payload of content the student cannot open yet.
func lockPayload(content *courseModels.Content) {
	content.Text = ""
	content.VideoFile = ""
	content.ImageFile = ""
	content.File = ""
}

// StudentListCourses lists the catalogue, optionally filtered by ?subject=<slug>.
func StudentListCourses(c *fiber.Ctx) error {
	db := database.Database.Db.Preload("Subject").Preload("Owner")
	if subject := c.Query("subject"); subject != "" {
		db = db.Joins("JOIN subjects ON subjects.id = courses.subject_id").Where("subjects.slug = ?", subject)
	}

	var courses []courseModels.Course
	if err := db.Order("courses.created_at DESC").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

// StudentGetCourse returns the course outline. Payloads of non-free content stay hidden until enrollment.
func StudentGetCourse(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := findCourse(db, c.Locals("slug").(string))
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}
	if err := db.Preload("Subject").Preload("Owner").
		Preload("Modules", byOrder).
		Preload("Modules.Contents", byOrder).
		First(course, course.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	enrolled := isEnrolled(db, p.UserID, course.ID)
	if !enrolled {
		for i := range course.Modules {
			for j := range course.Modules[i].Contents {
				if !course.Modules[i].Contents[j].IsFree {
					lockPayload(&course.Modules[i].Contents[j])
				}
			}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", fiber.Map{
		"course":   course,
		"enrolled": enrolled,
	})
}

func StudentGetContent(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	content, err := findContent(db, c.Locals("slug").(string))
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}
	if !canAccess(db, p.UserID, content) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You must enroll in this course to access this content!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content fetched successfully.", content)
}
