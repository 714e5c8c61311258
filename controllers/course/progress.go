package controllers

import (
	"time"

	"elearn/database"
	"elearn/logger"
	"elearn/middleware"
	courseModels "elearn/models/course"
	"elearn/utils"
	courseValidator "elearn/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type moduleProgress struct {
	Module            string `json:"module"`
	Title             string `json:"title"`
	Order             *int   `json:"order"`
	CompletedContents int    `json:"completed_contents"`
	TotalContents     int    `json:"total_contents"`
	Completed         bool   `json:"completed"`
}

// GetContentProgress returns the caller's progress on the content, creating the row on first access.
func GetContentProgress(c *fiber.Ctx) error {
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

	progress, err := courseModels.GetOrCreateContentProgress(db, p.UserID, content.ID)
	if err != nil {
		logger.Log.Error("content progress lookup failed", "content_id", content.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content progress fetched successfully.", progress)
}

// UpdateContentProgress marks the content completed and/or stores the resume position.
func UpdateContentProgress(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedContentProgress").(*courseValidator.ContentProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	content, err := findContent(db, c.Locals("slug").(string))
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}
	if !canAccess(db, p.UserID, content) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You must enroll in this course to access this content!", nil)
	}

	complete := reqData.Completed != nil && *reqData.Completed
	if !complete && reqData.LastPosition == nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"completed": "completed or last_position is required!"})
	}

	var progress *courseModels.ContentProgress
	if reqData.LastPosition != nil {
		progress, err = courseModels.UpdateLastPosition(db, p.UserID, content.ID, *reqData.LastPosition)
		if err != nil {
			logger.Log.Error("saving last position failed", "content_id", content.ID, "error", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
		}
	}
	if complete {
		var finished bool
		progress, finished, err = courseModels.MarkAsCompleted(db, p.UserID, content, time.Now())
		if err != nil {
			logger.Log.Error("marking content completed failed", "content_id", content.ID, "student_id", p.UserID, "error", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
		}
		if finished {
			logger.Log.Info("course completed", "course_id", content.Module.CourseID, "student_id", p.UserID)
			utils.EnqueueStatsRefresh(content.Module.CourseID)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content progress updated successfully.", progress)
}

// GetCourseProgress touches last_accessed and returns the percentage with a per-module breakdown.
func GetCourseProgress(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := findCourse(db, c.Locals("slug").(string))
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}
	if !isEnrolled(db, p.UserID, course.ID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	progress, err := courseModels.GetOrCreateCourseProgress(db, p.UserID, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}
	progress.LastAccessed = time.Now()
	if err := db.Model(progress).Update("last_accessed", progress.LastAccessed).Error; err != nil {
		logger.Log.Warn("touching last_accessed failed", "course_progress_id", progress.ID, "error", err)
	}

	if progress.ProgressPercentage, err = courseModels.ProgressPercentage(db, p.UserID, course.ID); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}

	var modules []courseModels.Module
	if err := byOrder(db.Preload("Contents").Where("course_id = ?", course.ID)).Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}
	done, err := completedContentIDs(db, p.UserID, course.ID)
	if err != nil {
		logger.Log.Error("fetching completed contents failed", "course_id", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	breakdown := make([]moduleProgress, 0, len(modules))
	for _, m := range modules {
		mp := moduleProgress{Module: m.Slug, Title: m.Title, Order: m.Order, TotalContents: len(m.Contents)}
		for _, content := range m.Contents {
			if done[content.ID] {
				mp.CompletedContents++
			}
		}
		mp.Completed = mp.CompletedContents == mp.TotalContents
		breakdown = append(breakdown, mp)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course progress fetched successfully.", fiber.Map{
		"course":   course.Slug,
		"progress": progress,
		"modules":  breakdown,
	})
}

// completedContentIDs returns the set of contents of the course the student has completed.
func completedContentIDs(db *gorm.DB, studentID, courseID uint) (map[uint]bool, error) {
	var ids []uint
	if err := db.Model(&courseModels.ContentProgress{}).
		Joins("JOIN contents ON contents.id = content_progresses.content_id").
		Joins("JOIN modules ON modules.id = contents.module_id").
		Where("content_progresses.student_id = ? AND content_progresses.completed = ? AND modules.course_id = ?", studentID, true, courseID).
		Pluck("content_progresses.content_id", &ids).Error; err != nil {
		return nil, err
	}
	done := make(map[uint]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}
