package controllers

import (
	"context"
	"errors"
	"mime/multipart"

	"elearn/config"
	"elearn/logger"
	courseModels "elearn/models/course"
	"elearn/storage"
	"elearn/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// lookupError carries the status and message of a failed lookup or ownership check.
type lookupError struct {
	status  int
	message string
}

func (e *lookupError) Error() string { return e.message }

func notFound(msg string) error  { return &lookupError{status: fiber.StatusNotFound, message: msg} }
func forbidden(msg string) error { return &lookupError{status: fiber.StatusForbidden, message: msg} }

// statusOf maps a lookup failure to its response status and message.
func statusOf(err error) (int, string) {
	var le *lookupError
	if errors.As(err, &le) {
		return le.status, le.message
	}
	return fiber.StatusInternalServerError, "Something went wrong!"
}

func byOrder(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC, id ASC")
}

func findCourse(db *gorm.DB, slug string) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := db.Where("slug = ?", slug).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Course not found!")
		}
		return nil, err
	}
	return &course, nil
}

func ownedCourse(db *gorm.DB, slug string, userID uint) (*courseModels.Course, error) {
	course, err := findCourse(db, slug)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != userID {
		return nil, forbidden("You are not the owner of this course!")
	}
	return course, nil
}

func ownedModule(db *gorm.DB, slug string, userID uint) (*courseModels.Module, error) {
	var module courseModels.Module
	if err := db.Preload("Course").Where("slug = ?", slug).First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Module not found!")
		}
		return nil, err
	}
	if module.Course == nil || module.Course.OwnerID != userID {
		return nil, forbidden("You are not the owner of this module!")
	}
	return &module, nil
}

func findContent(db *gorm.DB, slug string) (*courseModels.Content, error) {
	var content courseModels.Content
	if err := db.Preload("Module.Course").Where("slug = ?", slug).First(&content).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Content not found!")
		}
		return nil, err
	}
	return &content, nil
}

func ownedContent(db *gorm.DB, slug string, userID uint) (*courseModels.Content, error) {
	content, err := findContent(db, slug)
	if err != nil {
		return nil, err
	}
	if content.Module == nil || content.Module.Course == nil || content.Module.Course.OwnerID != userID {
		return nil, forbidden("You are not the owner of this content!")
	}
	return content, nil
}

// storeUpload checks the file against the upload policy and stores it. The returned
// message is non-empty when the client should get a 400.
func storeUpload(ctx context.Context, fh *multipart.FileHeader, folder string) (*storage.UploadResult, string) {
	if _, err := storage.ValidateFile(fh, config.AppConfig.MaxUploadMB); err != nil {
		var verr *storage.ValidationError
		if errors.As(err, &verr) {
			return nil, verr.Reason
		}
		logger.Log.Warn("upload validation failed", "filename", fh.Filename, "error", err)
		return nil, "Invalid file!"
	}
	res, err := storage.Default.Upload(ctx, fh, folder)
	if err != nil {
		logger.Log.Error("upload failed", "folder", folder, "filename", fh.Filename, "error", err)
		return nil, "Failed to upload file"
	}
	return res, ""
}

// discardUploads removes stored objects in the background. Failures are only logged.
func discardUploads(publicIDs ...string) {
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		publicID := id
		utils.Tasks.Enqueue("storage_delete", func(ctx context.Context) error {
			return storage.Default.Delete(ctx, publicID)
		})
	}
}

// applyUpload stores the upload result in the payload column of the content's variant.
func applyUpload(content *courseModels.Content, res *storage.UploadResult) {
	switch content.ResourceType {
	case courseModels.ResourceVideo:
		content.VideoFile = res.URL
		content.ThumbnailURL = res.ThumbnailURL
	case courseModels.ResourceImage:
		content.ImageFile = res.URL
	case courseModels.ResourceFile:
		content.File = res.URL
		content.FileSize = res.Size
	}
	content.PublicID = res.PublicID
}
