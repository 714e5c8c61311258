package controllers

import (
	"elearn/database"
	"elearn/logger"
	"elearn/middleware"
	courseModels "elearn/models/course"
	courseValidator "elearn/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateModule appends a module to an owned course. The order is assigned when omitted.
func CreateModule(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	course, err := ownedCourse(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	module := courseModels.Module{
		CourseID:    course.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		Order:       reqData.Order,
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&module).Error
	}); err != nil {
		logger.Log.Error("module create failed", "course_id", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func ListModules(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := ownedCourse(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	var modules []courseModels.Module
	if err := byOrder(db.Where("course_id = ?", course.ID)).Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully.", modules)
}

func GetModule(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	module, err := ownedModule(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}
	if err := byOrder(db.Where("module_id = ?", module.ID)).Find(&module.Contents).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch module contents!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully.", module)
}

// UpdateModule changes the given fields. The slug stays stable across renames.
func UpdateModule(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedModuleUpdate").(*courseValidator.ModuleUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	module, err := ownedModule(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	if reqData.Title != nil {
		module.Title = *reqData.Title
	}
	if reqData.Description != nil {
		module.Description = *reqData.Description
	}
	if reqData.Order != nil {
		module.Order = reqData.Order
	}

	if err := db.Omit("Course", "Contents").Save(module).Error; err != nil {
		logger.Log.Error("module update failed", "module_id", module.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteModule removes the module with its contents and their progress.
func DeleteModule(c *fiber.Ctx) error {
	p, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	module, err := ownedModule(db, c.Locals("slug").(string), p.UserID)
	if err != nil {
		status, msg := statusOf(err)
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	var publicIDs []string
	err = db.Transaction(func(tx *gorm.DB) error {
		ids, err := courseModels.DeleteModule(tx, module.ID)
		publicIDs = ids
		return err
	})
	if err != nil {
		logger.Log.Error("module delete failed", "module_id", module.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}
	discardUploads(publicIDs...)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}
