package controllers

import (
	"errors"

	"elearn/database"
	"elearn/middleware"
	courseModels "elearn/models/course"
	courseValidator "elearn/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ListSubjects(c *fiber.Ctx) error {
	var subjects []courseModels.Subject
	if err := database.Database.Db.Order("title ASC").Find(&subjects).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subjects!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subjects fetched successfully.", subjects)
}

// GetSubject returns the subject with its courses.
func GetSubject(c *fiber.Ctx) error {
	var subject courseModels.Subject
	err := database.Database.Db.Preload("Courses", func(db *gorm.DB) *gorm.DB {
		return db.Order("title ASC")
	}).Where("slug = ?", c.Locals("slug").(string)).First(&subject).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Subject not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subject!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subject fetched successfully.", subject)
}

func CreateSubject(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSubject").(*courseValidator.SubjectRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	subject := courseModels.Subject{Title: reqData.Title}
	if err := database.Database.Db.Create(&subject).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create subject!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Subject created successfully!", subject)
}
