package controllers

import (
	"errors"
	"strings"

	"elearn/database"
	"elearn/logger"
	"elearn/middleware"
	courseModels "elearn/models/course"
	courseValidator "elearn/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func contentWriteFailed(c *fiber.Ctx, err error, msg string) error {
	if errors.Is(err, courseModels.ErrUnknownResourceType) ||
		errors.Is(err, courseModels.ErrPayloadMismatch) ||
		errors.Is(err, courseModels.ErrPayloadMissing) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}
	logger.Log.Error(msg, "error", err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, msg, nil)
}

func ListContents(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	module, err := ownedModule(db, c.Locals("module_slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	var contents []courseModels.Content
	if err := byOrder(db.Where("module_id = ?", module.ID)).Find(&contents).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch contents!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contents fetched successfully.", contents)
}

// CreateContent stores the variant payload (uploading it when it is a file) and creates the row.
func CreateContent(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedContent").(*courseValidator.ContentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	module, err := ownedModule(db, c.Locals("module_slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	content := courseModels.Content{
		ModuleID:     module.ID,
		OwnerID:      p.UserID,
		ResourceType: courseModels.ResourceType(reqData.ResourceType),
		Title:        reqData.Title,
		IsFree:       reqData.IsFree,
		Order:        reqData.Order,
	}

	if content.ResourceType.IsUpload() {
		fh := reqData.Files[content.ResourceType.PayloadField()]
		res, msg := storeUpload(c.UserContext(), fh, "content")
		if msg != "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
		}
		applyUpload(&content, res)
	} else {
		content.Text = reqData.Text
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Module").Create(&content).Error
	}); err != nil {
		discardUploads(content.PublicID)
		return contentWriteFailed(c, err, "Failed to create content!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content created successfully!", content)
}

func GetContent(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)

	content, err := ownedContent(database.Database.Db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content fetched successfully.", content)
}

// UpdateContent applies a partial update. The resourcetype cannot change and a new file
// replaces the stored object.
func UpdateContent(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedContentUpdate").(*courseValidator.ContentUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	content, err := ownedContent(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	if reqData.ResourceType != nil && courseModels.ResourceType(*reqData.ResourceType) != content.ResourceType {
		return middleware.ValidationErrorResponse(c, map[string]string{"resourcetype": courseModels.ErrResourceTypeChange.Error()})
	}
	text := ""
	if reqData.Text != nil {
		text = *reqData.Text
	}
	if errs := courseValidator.PayloadErrors(content.ResourceType, text, reqData.Files, false); errs != nil {
		return middleware.ValidationErrorResponse(c, errs)
	}

	if reqData.Title != nil {
		content.Title = strings.TrimSpace(*reqData.Title)
	}
	if reqData.IsFree != nil {
		content.IsFree = *reqData.IsFree
	}
	if reqData.Order != nil {
		content.Order = reqData.Order
	}
	if content.ResourceType == courseModels.ResourceText && reqData.Text != nil {
		content.Text = *reqData.Text
	}

	// the stored object is only replaced once the row points at the new one
	var replaced, uploaded string
	if fh := reqData.Files[content.ResourceType.PayloadField()]; fh != nil {
		res, msg := storeUpload(c.UserContext(), fh, "content")
		if msg != "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
		}
		replaced, uploaded = content.PublicID, res.PublicID
		applyUpload(content, res)
	}

	if err := content.Validate(); err != nil {
		discardUploads(uploaded)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}
	if err := db.Omit("Module").Save(content).Error; err != nil {
		discardUploads(uploaded)
		return contentWriteFailed(c, err, "Failed to update content!")
	}
	discardUploads(replaced)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content updated successfully!", content)
}

func DeleteContent(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	content, err := ownedContent(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	var publicIDs []string
	err = db.Transaction(func(tx *gorm.DB) error {
		ids, err := courseModels.DeleteContent(tx, content)
		publicIDs = ids
		return err
	})
	if err != nil {
		logger.Log.Error("content delete failed", "content_id", content.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content!", nil)
	}
	discardUploads(publicIDs...)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content deleted successfully!", nil)
}
