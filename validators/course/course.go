package courseValidator

import (
	"mime/multipart"
	"strings"

	"elearn/middleware"
	courseModels "elearn/models/course"
	"elearn/validators"

	"github.com/gofiber/fiber/v2"
)

// ============ Course Validators ============

type CourseRequest struct {
	Title        string                `json:"title" form:"title" validate:"required,max=200"`
	SubjectID    uint                  `json:"subject_id" form:"subject_id" validate:"required"`
	Price        float64               `json:"price" form:"price" validate:"gte=0"`
	RequiredTime int                   `json:"required_time" form:"required_time" validate:"required,gt=0"`
	Summary      string                `json:"summary" form:"summary" validate:"required"`
	Thumbnail    *multipart.FileHeader `json:"-" form:"-"`
}

type CourseUpdateRequest struct {
	Title        *string               `json:"title" form:"title" validate:"omitempty,min=1,max=200"`
	SubjectID    *uint                 `json:"subject_id" form:"subject_id" validate:"omitempty,gt=0"`
	Price        *float64              `json:"price" form:"price" validate:"omitempty,gte=0"`
	RequiredTime *int                  `json:"required_time" form:"required_time" validate:"omitempty,gt=0"`
	Summary      *string               `json:"summary" form:"summary"`
	Thumbnail    *multipart.FileHeader `json:"-" form:"-"`
}

func optionalFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

// CreateCourse validates course creation (JSON or multipart with an optional thumbnail).
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Summary = strings.TrimSpace(reqData.Summary)
		reqData.Thumbnail = optionalFile(c, "thumbnail")

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourse validates a full or partial course update.
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Title != nil {
			t := strings.TrimSpace(*reqData.Title)
			reqData.Title = &t
		}
		reqData.Thumbnail = optionalFile(c, "thumbnail")

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// ============ Subject Validators ============

type SubjectRequest struct {
	Title string `json:"title" form:"title" validate:"required,max=200"`
}

func CreateSubject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubjectRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedSubject", reqData)
		return c.Next()
	}
}

// ============ Module Validators ============

type ModuleRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description"`
	Order       *int   `json:"order" form:"order" validate:"omitempty,gte=0"`
}

type ModuleUpdateRequest struct {
	Title       *string `json:"title" form:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" form:"description"`
	Order       *int    `json:"order" form:"order" validate:"omitempty,gte=0"`
}

func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ModuleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ModuleUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedModuleUpdate", reqData)
		return c.Next()
	}
}

// ============ Content Validators ============

type ContentRequest struct {
	ResourceType string                           `json:"resourcetype" form:"resourcetype" validate:"required,oneof=TextContent VideoContent ImageContent FileContent"`
	Title        string                           `json:"title" form:"title" validate:"required,max=250"`
	IsFree       bool                             `json:"is_free" form:"is_free"`
	Order        *int                             `json:"order" form:"order" validate:"omitempty,gte=0"`
	Text         string                           `json:"text" form:"text"`
	Files        map[string]*multipart.FileHeader `json:"-" form:"-"`
}

type ContentUpdateRequest struct {
	ResourceType *string                          `json:"resourcetype" form:"resourcetype"`
	Title        *string                          `json:"title" form:"title" validate:"omitempty,min=1,max=250"`
	IsFree       *bool                            `json:"is_free" form:"is_free"`
	Order        *int                             `json:"order" form:"order" validate:"omitempty,gte=0"`
	Text         *string                          `json:"text" form:"text"`
	Files        map[string]*multipart.FileHeader `json:"-" form:"-"`
}

// uploadedPayloads collects whichever payload file fields were sent.
func uploadedPayloads(c *fiber.Ctx) map[string]*multipart.FileHeader {
	files := make(map[string]*multipart.FileHeader)
	for _, field := range courseModels.PayloadFields {
		if fh := optionalFile(c, field); fh != nil {
			files[field] = fh
		}
	}
	return files
}

// PayloadErrors checks that the submitted payloads match the discriminant: the variant's own
// payload when required is set, and nothing belonging to another variant.
func PayloadErrors(rt courseModels.ResourceType, text string, files map[string]*multipart.FileHeader, required bool) map[string]string {
	errors := make(map[string]string)
	want := rt.PayloadField()

	if strings.TrimSpace(text) != "" && rt != courseModels.ResourceText {
		errors["text"] = "text is not allowed for " + string(rt) + "!"
	}
	for field := range files {
		if field != want {
			errors[field] = field + " is not allowed for " + string(rt) + "!"
		}
	}
	if required {
		if rt == courseModels.ResourceText && strings.TrimSpace(text) == "" {
			errors["text"] = "text is required!"
		}
		if rt.IsUpload() && files[want] == nil {
			errors[want] = want + " is required!"
		}
	}
	if len(errors) == 0 {
		return nil
	}
	return errors
}

func CreateContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ContentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Files = uploadedPayloads(c)

		errors := validators.Struct(reqData)
		if errors == nil {
			errors = PayloadErrors(courseModels.ResourceType(reqData.ResourceType), reqData.Text, reqData.Files, true)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContent", reqData)
		return c.Next()
	}
}

// UpdateContent validates field shapes only; payload consistency needs the stored discriminant.
func UpdateContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ContentUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Files = uploadedPayloads(c)

		errors := validators.Struct(reqData)
		if reqData.ResourceType != nil && !courseModels.ResourceType(*reqData.ResourceType).Valid() {
			errors = validators.Merge(errors, map[string]string{"resourcetype": "resourcetype must be one of: TextContent VideoContent ImageContent FileContent!"})
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContentUpdate", reqData)
		return c.Next()
	}
}

// ============ Media Validators ============

type MediaRequest struct {
	Title       string                `json:"title" form:"title" validate:"required,max=255"`
	Description string                `json:"description" form:"description"`
	MediaType   string                `json:"media_type" form:"media_type" validate:"required,oneof=image video document"`
	File        *multipart.FileHeader `json:"-" form:"-" validate:"required"`
}

func CreateMedia() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(MediaRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.File = optionalFile(c, "file")
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedMedia", reqData)
		return c.Next()
	}
}

// ============ Progress Validators ============

type ContentProgressRequest struct {
	Completed    *bool    `json:"completed" form:"completed"`
	LastPosition *float64 `json:"last_position" form:"last_position" validate:"omitempty,gte=0"`
}

func ContentProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ContentProgressRequest)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedContentProgress", reqData)
		return c.Next()
	}
}
