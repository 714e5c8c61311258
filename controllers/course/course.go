package controllers

import (
	"errors"
	"fmt"

	"elearn/cache"
	"elearn/database"
	"elearn/logger"
	"elearn/middleware"
	chatModels "elearn/models/chat"
	courseModels "elearn/models/course"
	"elearn/utils"
	courseValidator "elearn/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func titleTaken(db *gorm.DB, title string, excludeID uint) bool {
	var n int64
	db.Model(&courseModels.Course{}).Where("title = ? AND id <> ?", title, excludeID).Count(&n)
	return n > 0
}

func subjectExists(db *gorm.DB, id uint) bool {
	var n int64
	db.Model(&courseModels.Subject{}).Where("id = ?", id).Count(&n)
	return n > 0
}

// CreateCourse creates a course owned by the calling instructor.
func CreateCourse(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if titleTaken(db, reqData.Title, 0) {
		return middleware.ValidationErrorResponse(c, map[string]string{"title": "course with this title already exists."})
	}
	if !subjectExists(db, reqData.SubjectID) {
		return middleware.ValidationErrorResponse(c, map[string]string{"subject_id": "Subject not found!"})
	}

	course := courseModels.Course{
		Title:        reqData.Title,
		Price:        reqData.Price,
		SubjectID:    reqData.SubjectID,
		RequiredTime: reqData.RequiredTime,
		Summary:      reqData.Summary,
		OwnerID:      p.UserID,
	}

	if reqData.Thumbnail != nil {
		res, msg := storeUpload(c.UserContext(), reqData.Thumbnail, "course_thumbnails")
		if msg != "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
		}
		course.Thumbnail = res.URL
		course.ThumbnailPublicID = res.PublicID
	}

	if err := db.Create(&course).Error; err != nil {
		discardUploads(course.ThumbnailPublicID)
		logger.Log.Error("course create failed", "owner_id", p.UserID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	logger.Log.Info("course created", "course_id", course.ID, "slug", course.Slug)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// ListInstructorCourses lists the caller's own courses.
func ListInstructorCourses(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)

	var courses []courseModels.Course
	if err := database.Database.Db.Preload("Subject").
		Where("owner_id = ?", p.UserID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

func GetInstructorCourse(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := ownedCourse(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}
	if err := db.Preload("Subject").
		Preload("Modules", byOrder).
		Preload("Modules.Contents", byOrder).
		First(course, course.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", course)
}

// UpdateCourse applies a full or partial update. Renaming re-derives the slug.
func UpdateCourse(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCourseUpdate").(*courseValidator.CourseUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	course, err := ownedCourse(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	if reqData.Title != nil && *reqData.Title != course.Title {
		if titleTaken(db, *reqData.Title, course.ID) {
			return middleware.ValidationErrorResponse(c, map[string]string{"title": "course with this title already exists."})
		}
		if err := course.Rename(db, *reqData.Title); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
	}
	if reqData.SubjectID != nil {
		if !subjectExists(db, *reqData.SubjectID) {
			return middleware.ValidationErrorResponse(c, map[string]string{"subject_id": "Subject not found!"})
		}
		course.SubjectID = *reqData.SubjectID
	}
	if reqData.Price != nil {
		course.Price = *reqData.Price
	}
	if reqData.RequiredTime != nil {
		course.RequiredTime = *reqData.RequiredTime
	}
	if reqData.Summary != nil {
		course.Summary = *reqData.Summary
	}

	var replaced string
	if reqData.Thumbnail != nil {
		res, msg := storeUpload(c.UserContext(), reqData.Thumbnail, "course_thumbnails")
		if msg != "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
		}
		replaced = course.ThumbnailPublicID
		course.Thumbnail = res.URL
		course.ThumbnailPublicID = res.PublicID
	}

	if err := db.Omit("Subject", "Owner", "Modules").Save(course).Error; err != nil {
		logger.Log.Error("course update failed", "course_id", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}
	discardUploads(replaced)

	utils.EnqueueCourseUpdateNotification(course.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse removes the course tree and the chat rooms linked to it.
func DeleteCourse(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := ownedCourse(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	var publicIDs []string
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := chatModels.DeleteCourseRooms(tx, course.ID); err != nil {
			return fmt.Errorf("delete chat rooms: %w", err)
		}
		ids, err := courseModels.DeleteCourse(tx, course)
		publicIDs = ids
		return err
	})
	if err != nil {
		logger.Log.Error("course delete failed", "course_id", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}
	discardUploads(publicIDs...)
	if err := cache.Default.Delete(c.UserContext(), cache.CourseStatsKey(course.ID)); err != nil {
		logger.Log.Warn("dropping cached stats failed", "course_id", course.ID, "error", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, fmt.Sprintf("%s successfully deleted", course.Title), nil)
}

// CourseStats serves the cached enrollment statistics of an owned course.
func CourseStats(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := ownedCourse(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	stats, err := utils.CachedCourseStatistics(c.UserContext(), db, cache.Default, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute statistics!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course statistics fetched successfully.", stats)
}

// ============ Course media ============

func ListCourseMedia(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := ownedCourse(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	var media []courseModels.CourseMedia
	if err := db.Where("course_id = ?", course.ID).Order("created_at DESC").Find(&media).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch media!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course media fetched successfully.", media)
}

func UploadCourseMedia(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedMedia").(*courseValidator.MediaRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	course, err := ownedCourse(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	res, msg := storeUpload(c.UserContext(), reqData.File, "course_media")
	if msg != "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
	}

	media := courseModels.CourseMedia{
		CourseID:     course.ID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		MediaType:    courseModels.MediaType(reqData.MediaType),
		FileURL:      res.URL,
		ThumbnailURL: res.ThumbnailURL,
		PublicID:     res.PublicID,
		Size:         res.Size,
	}
	if err := db.Create(&media).Error; err != nil {
		discardUploads(res.PublicID)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save media!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Media uploaded successfully!", media)
}

func DeleteCourseMedia(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid media id!", nil)
	}

	var media courseModels.CourseMedia
	if err := db.First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Media not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch media!", nil)
	}

	var course courseModels.Course
	if err := db.Select("id", "owner_id").First(&course, media.CourseID).Error; err != nil || course.OwnerID != p.UserID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the owner of this course!", nil)
	}

	if err := db.Delete(&media).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete media!", nil)
	}
	discardUploads(media.PublicID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Media deleted successfully!", nil)
}
