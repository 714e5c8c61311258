package authController

import (
	"errors"
	"strings"
	"time"

	"elearn/config"
	"elearn/database"
	"elearn/logger"
	"elearn/middleware"
	"elearn/models"
	authValidator "elearn/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// roleName is the lowercase role label returned to clients.
func roleName(role models.Role) string {
	return strings.ToLower(string(role))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), config.AppConfig.SaltRound)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// checkAvailable reports a conflict message when the username or email is taken.
func checkAvailable(db *gorm.DB, username, email string) string {
	var n int64
	db.Model(&models.User{}).Where("username = ?", username).Count(&n)
	if n > 0 {
		return "Username is already taken!"
	}
	db.Model(&models.User{}).Where("email = ?", email).Count(&n)
	if n > 0 {
		return "Email is already registered!"
	}
	return ""
}

func registered(c *fiber.Ctx, user *models.User, role models.Role, message string) error {
	token, err := middleware.GenerateJWT(user, role)
	if err != nil {
		logger.Log.Error("token generation failed", "user_id", user.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, message, fiber.Map{
		"user":  user,
		"role":  roleName(role),
		"token": token,
	})
}

func RegisterStudent(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStudent").(*authValidator.RegisterStudentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if msg := checkAvailable(db, reqData.Username, reqData.Email); msg != "" {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, msg, nil)
	}

	hashed, err := hashPassword(reqData.Password)
	if err != nil {
		logger.Log.Error("password hashing failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	birth, _ := time.Parse("2006-01-02", reqData.BirthDate) // format checked by the validator
	birthDate := datatypes.Date(birth)
	user := models.User{
		Username:  reqData.Username,
		Email:     reqData.Email,
		FirstName: reqData.FirstName,
		LastName:  reqData.LastName,
		Password:  hashed,
		Student: &models.Student{
			BirthDate:   &birthDate,
			Education:   models.Education(reqData.Education),
			PhoneNumber: reqData.PhoneNumber,
		},
	}

	// user and profile are inserted in one transaction
	if err := db.Create(&user).Error; err != nil {
		logger.Log.Error("student registration failed", "username", user.Username, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register student!", nil)
	}

	logger.Log.Info("student registered", "user_id", user.ID)
	return registered(c, &user, models.RoleStudent, "Student registered successfully!")
}

func RegisterInstructor(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedInstructor").(*authValidator.RegisterInstructorRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if msg := checkAvailable(db, reqData.Username, reqData.Email); msg != "" {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, msg, nil)
	}

	hashed, err := hashPassword(reqData.Password)
	if err != nil {
		logger.Log.Error("password hashing failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	user := models.User{
		Username:  reqData.Username,
		Email:     reqData.Email,
		FirstName: reqData.FirstName,
		LastName:  reqData.LastName,
		Password:  hashed,
		Instructor: &models.Instructor{
			Bio:       reqData.Bio,
			Education: models.Education(reqData.Education),
		},
	}

	if err := db.Create(&user).Error; err != nil {
		logger.Log.Error("instructor registration failed", "username", user.Username, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register instructor!", nil)
	}

	logger.Log.Info("instructor registered", "user_id", user.ID)
	return registered(c, &user, models.RoleInstructor, "Instructor registered successfully!")
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var user models.User
	query := db.Preload("Student").Preload("Instructor")
	if reqData.Email != "" {
		query = query.Where("email = ?", reqData.Email)
	} else {
		query = query.Where("username = ?", reqData.Username)
	}
	if err := query.First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	role, ok := user.ResolveRole()
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Account has no student or instructor profile!", nil)
	}

	now := time.Now()
	user.LastLogin = &now
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		logger.Log.Warn("saving last login failed", "user_id", user.ID, "error", err)
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}
	tracking := models.LoginTracking{
		UserID:    user.ID,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Timestamp: now,
	}
	if err := db.Create(&tracking).Error; err != nil {
		logger.Log.Warn("saving login tracking failed", "user_id", user.ID, "error", err)
	}

	token, err := middleware.GenerateJWT(&user, role)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"role":  roleName(role),
		"token": token,
	})
}

func LoginHistoryList(c *fiber.Ctx) error {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedLoginHistory").(*authValidator.LoginHistoryRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (reqData.Page - 1) * reqData.Limit

	var history []models.LoginTracking
	var total int64
	db := database.Database.Db.Model(&models.LoginTracking{}).Where("user_id = ?", p.UserID)
	db.Count(&total)
	if err := db.Order("timestamp DESC").Offset(offset).Limit(reqData.Limit).Find(&history).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": history,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

func loadProfile(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.Preload("Student").Preload("Instructor").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetProfile(c *fiber.Ctx) error {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	user, err := loadProfile(database.Database.Db, p.UserID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", fiber.Map{
		"user": user,
		"role": roleName(p.Role),
	})
}

func UpdateProfile(c *fiber.Ctx) error {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedProfile").(*authValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	user, err := loadProfile(db, p.UserID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if reqData.FirstName != nil {
			user.FirstName = *reqData.FirstName
		}
		if reqData.LastName != nil {
			user.LastName = *reqData.LastName
		}
		if err := tx.Model(user).Select("first_name", "last_name").Updates(user).Error; err != nil {
			return err
		}

		switch {
		case user.Student != nil:
			if reqData.PhoneNumber != nil {
				user.Student.PhoneNumber = *reqData.PhoneNumber
			}
			if reqData.Education != nil {
				user.Student.Education = models.Education(*reqData.Education)
			}
			return tx.Save(user.Student).Error
		case user.Instructor != nil:
			if reqData.Bio != nil {
				user.Instructor.Bio = *reqData.Bio
			}
			if reqData.Education != nil {
				user.Instructor.Education = models.Education(*reqData.Education)
			}
			return tx.Save(user.Instructor).Error
		}
		return errors.New("user has no profile")
	})
	if err != nil {
		logger.Log.Error("profile update failed", "user_id", p.UserID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", fiber.Map{
		"user": user,
		"role": roleName(p.Role),
	})
}
