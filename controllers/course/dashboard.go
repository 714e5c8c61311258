package controllers

import (
	"math"
	"sort"
	"time"

	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	recentWindow  = 7 * 24 * time.Hour
	dashboardTopN = 5
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type courseProgressView struct {
	Course             *courseModels.Course `json:"course"`
	Completed          bool                 `json:"completed"`
	CompletedAt        *time.Time           `json:"completed_at"`
	LastAccessed       time.Time            `json:"last_accessed"`
	ProgressPercentage float64              `json:"progress_percentage"`
}

type courseView struct {
	courseModels.Course
	Enrollments int64 `json:"total_enrollments"`
}

// Dashboard answers with the student or instructor view depending on the caller's role.
func Dashboard(c *fiber.Ctx) error {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db
	switch p.Role {
	case models.RoleStudent:
		data, err := studentDashboard(db, p.UserID, time.Now())
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build dashboard!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", data)
	case models.RoleInstructor:
		data, err := instructorDashboard(db, p.UserID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build dashboard!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", data)
	}
	return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user role", nil)
}

func studentDashboard(db *gorm.DB, userID uint, at time.Time) (fiber.Map, error) {
	var rows []courseModels.CourseProgress
	if err := db.Preload("Course").Where("student_id = ?", userID).Order("last_accessed DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]courseProgressView, 0, len(rows))
	recent := make([]courseProgressView, 0, dashboardTopN)
	var completed int
	var total float64
	for _, row := range rows {
		pct, err := courseModels.ProgressPercentage(db, userID, row.CourseID)
		if err != nil {
			return nil, err
		}
		v := courseProgressView{
			Course:             row.Course,
			Completed:          row.Completed,
			CompletedAt:        row.CompletedAt,
			LastAccessed:       row.LastAccessed,
			ProgressPercentage: round2(pct),
		}
		views = append(views, v)
		total += pct
		if row.Completed {
			completed++
		}
		if len(recent) < dashboardTopN && !row.LastAccessed.Before(at.Add(-recentWindow)) {
			recent = append(recent, v)
		}
	}

	average := 0.0
	if len(rows) > 0 {
		average = total / float64(len(rows))
	}

	return fiber.Map{
		"role": "student",
		"statistics": fiber.Map{
			"totalCourses":      len(rows),
			"completedCourses":  completed,
			"inProgressCourses": len(rows) - completed,
			"averageProgress":   round2(average),
		},
		"recent_courses":   recent,
		"enrolled_courses": views,
	}, nil
}

func instructorDashboard(db *gorm.DB, userID uint) (fiber.Map, error) {
	var courses []courseModels.Course
	if err := db.Preload("Subject").Where("owner_id = ?", userID).Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		CourseID uint
		Total    int64
	}
	var counts []countRow
	if err := db.Model(&courseModels.Enrollment{}).
		Select("enrollments.course_id, COUNT(*) AS total").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.owner_id = ?", userID).
		Group("enrollments.course_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byCourse := make(map[uint]int64, len(counts))
	for _, row := range counts {
		byCourse[row.CourseID] = row.Total
	}

	views := make([]courseView, 0, len(courses))
	var students int64
	var revenue float64
	for _, course := range courses {
		n := byCourse[course.ID]
		students += n
		revenue += course.Price * float64(n)
		views = append(views, courseView{Course: course, Enrollments: n})
	}

	top := make([]courseView, len(views))
	copy(top, views)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Enrollments > top[j].Enrollments })
	if len(top) > dashboardTopN {
		top = top[:dashboardTopN]
	}

	perCourse := 0.0
	if len(courses) > 0 {
		perCourse = float64(students) / float64(len(courses))
	}

	return fiber.Map{
		"role": "teacher",
		"statistics": fiber.Map{
			"activeCourses":            len(courses),
			"totalStudents":            students,
			"totalRevenue":             round2(revenue),
			"averageStudentsPerCourse": round2(perCourse),
		},
		"top_courses": top,
		"courses":     views,
	}, nil
}
