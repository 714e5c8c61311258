package controllers

import (
	"errors"
	"time"

	"elearn/database"
	"elearn/logger"
	"elearn/middleware"
	courseModels "elearn/models/course"
	"elearn/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// EnrollInCourse enrolls the calling student. The deadline is today plus the course's required days.
func EnrollInCourse(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := findCourse(db, c.Locals("course_slug").(string))
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	if isEnrolled(db, p.UserID, course.ID) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, courseModels.ErrAlreadyEnrolled.Error(), nil)
	}

	enrollment := courseModels.NewEnrollment(p.UserID, *course, now.BeginningOfDay())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		_, err := courseModels.GetOrCreateCourseProgress(tx, p.UserID, course.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, courseModels.ErrAlreadyEnrolled.Error(), nil)
		}
		logger.Log.Error("enrollment failed", "course_id", course.ID, "student_id", p.UserID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	enrollment.DeadlineReached = enrollment.IsDeadlineReached(time.Now())
	enrollment.Course = course
	utils.EnqueueEnrollmentTasks(enrollment.ID, course.ID)

	logger.Log.Info("student enrolled", "course_id", course.ID, "student_id", p.UserID, "enrollment_id", enrollment.ID)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", enrollment)
}

// StudentEnrollments lists the caller's enrollments.
func StudentEnrollments(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Preload("Course").
		Where("user_id = ?", p.UserID).
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully.", enrollments)
}

// InstructorEnrollments lists enrollments across all of the caller's courses.
func InstructorEnrollments(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Preload("User").Preload("Course").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.owner_id = ?", p.UserID).
		Order("enrollments.created_at DESC").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully.", enrollments)
}

func InstructorCourseEnrollments(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := ownedCourse(db, c.Locals("course_slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	var enrollments []courseModels.Enrollment
	if err := db.Preload("User").
		Where("course_id = ?", course.ID).
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully.", enrollments)
}
