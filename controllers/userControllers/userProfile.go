package userController

import (
	"errors"

	"elearn/config"
	"elearn/database"
	"elearn/logger"
	"elearn/middleware"
	"elearn/models"
	"elearn/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadProfilePicture stores the picture and links it to the caller's student or instructor profile.
func UploadProfilePicture(c *fiber.Ctx) error {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	fh, err := c.FormFile("profile_picture")
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"profile_picture": "profile_picture is required!"})
	}
	mime, err := storage.ValidateFile(fh, config.AppConfig.MaxUploadMB)
	if err != nil {
		var verr *storage.ValidationError
		if errors.As(err, &verr) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, verr.Reason, nil)
		}
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid file!", nil)
	}
	if mime != "image/jpeg" && mime != "image/png" && mime != "image/gif" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Profile picture must be an image!", nil)
	}

	res, err := storage.Default.Upload(c.UserContext(), fh, "profile_pictures")
	if err != nil {
		logger.Log.Error("profile picture upload failed", "user_id", p.UserID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to upload file", nil)
	}

	db := database.Database.Db
	var profile interface{} = &models.Student{}
	if p.Role == models.RoleInstructor {
		profile = &models.Instructor{}
	}
	result := db.Model(profile).Where("user_id = ?", p.UserID).Update("profile_picture", res.URL)
	if result.Error != nil || result.RowsAffected == 0 {
		_ = storage.Default.Delete(c.UserContext(), res.PublicID)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile picture!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile picture updated successfully.", fiber.Map{
		"profile_picture": res.URL,
	})
}
