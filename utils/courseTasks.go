package utils

import (
	"context"
	"fmt"
	"time"

	"elearn/cache"
	"elearn/config"
	"elearn/database"
	"elearn/models"
	courseModels "elearn/models/course"

	"gorm.io/gorm"
)

type CourseStats struct {
	CourseID         uint      `json:"course_id"`
	TotalEnrollments int64     `json:"total_enrollments"`
	ActiveStudents   int64     `json:"active_students"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func statsTTL() time.Duration {
	if config.AppConfig == nil {
		return time.Hour
	}
	return time.Duration(config.AppConfig.CacheTTLSeconds) * time.Second
}

// ComputeCourseStatistics counts all enrollments and the ones still in progress.
func ComputeCourseStatistics(db *gorm.DB, courseID uint) (*CourseStats, error) {
	stats := &CourseStats{CourseID: courseID, UpdatedAt: time.Now()}
	if err := db.Model(&courseModels.Enrollment{}).Where("course_id = ?", courseID).Count(&stats.TotalEnrollments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, courseModels.StatusInProgress).
		Count(&stats.ActiveStudents).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// RefreshCourseStatistics recomputes the stats and caches them under course_stats_<id>.
func RefreshCourseStatistics(ctx context.Context, db *gorm.DB, store cache.Store, courseID uint) (*CourseStats, error) {
	stats, err := ComputeCourseStatistics(db, courseID)
	if err != nil {
		return nil, fmt.Errorf("course %d stats: %w", courseID, err)
	}
	if err := store.Set(ctx, cache.CourseStatsKey(courseID), stats, statsTTL()); err != nil {
		return stats, fmt.Errorf("cache course %d stats: %w", courseID, err)
	}
	return stats, nil
}

// CachedCourseStatistics serves the cached stats and recomputes on a miss.
func CachedCourseStatistics(ctx context.Context, db *gorm.DB, store cache.Store, courseID uint) (*CourseStats, error) {
	var stats CourseStats
	if ok, err := store.Get(ctx, cache.CourseStatsKey(courseID), &stats); err == nil && ok {
		return &stats, nil
	}
	s, err := RefreshCourseStatistics(ctx, db, store, courseID)
	if s != nil {
		return s, nil
	}
	return nil, err
}

// RefreshAllCourseStatistics warms the cache for every course.
func RefreshAllCourseStatistics(ctx context.Context, db *gorm.DB, store cache.Store) error {
	var ids []uint
	if err := db.Model(&courseModels.Course{}).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := RefreshCourseStatistics(ctx, db, store, id); err != nil {
			return err
		}
	}
	return nil
}

// SendEnrollmentWelcome mails the student of the enrollment.
func SendEnrollmentWelcome(ctx context.Context, db *gorm.DB, enrollmentID uint) error {
	var e courseModels.Enrollment
	if err := db.WithContext(ctx).Preload("User").Preload("Course").First(&e, enrollmentID).Error; err != nil {
		return fmt.Errorf("load enrollment %d: %w", enrollmentID, err)
	}
	deadline := time.Time(e.Deadline).Format("2006-01-02")
	return SendEnrollmentWelcomeEmail(e.User.Email, e.User.FullName(), e.Course.Title, deadline)
}

// SendCourseUpdateNotification mails every student enrolled in the course.
func SendCourseUpdateNotification(ctx context.Context, db *gorm.DB, courseID uint) error {
	var c courseModels.Course
	if err := db.WithContext(ctx).First(&c, courseID).Error; err != nil {
		return fmt.Errorf("load course %d: %w", courseID, err)
	}
	var emails []string
	if err := db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.course_id = ?", courseID).
		Pluck("users.email", &emails).Error; err != nil {
		return err
	}
	return SendCourseUpdateEmail(emails, c.Title)
}

// EnqueueEnrollmentTasks schedules the welcome email and a stats refresh for a new enrollment.
func EnqueueEnrollmentTasks(enrollmentID, courseID uint) {
	Tasks.Enqueue(fmt.Sprintf("enrollment_welcome_%d", enrollmentID), func(ctx context.Context) error {
		return SendEnrollmentWelcome(ctx, database.Database.Db, enrollmentID)
	})
	EnqueueStatsRefresh(courseID)
}

func EnqueueStatsRefresh(courseID uint) {
	Tasks.Enqueue(fmt.Sprintf("course_stats_%d", courseID), func(ctx context.Context) error {
		_, err := RefreshCourseStatistics(ctx, database.Database.Db, cache.Default, courseID)
		return err
	})
}

func EnqueueCourseUpdateNotification(courseID uint) {
	Tasks.Enqueue(fmt.Sprintf("course_update_%d", courseID), func(ctx context.Context) error {
		return SendCourseUpdateNotification(ctx, database.Database.Db, courseID)
	})
}

// MarkReachedDeadlines moves in-progress enrollments whose deadline is today or earlier
// to REACHED DEADLINE and returns how many changed.
func MarkReachedDeadlines(db *gorm.DB, today time.Time) (int64, error) {
	var expired []uint
	var batch []courseModels.Enrollment
	err := db.Where("status = ?", courseModels.StatusInProgress).
		FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				if batch[i].IsDeadlineReached(today) {
					expired = append(expired, batch[i].ID)
				}
			}
			return nil
		}).Error
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}
	res := db.Model(&courseModels.Enrollment{}).
		Where("id IN ? AND status = ?", expired, courseModels.StatusInProgress).
		Update("status", courseModels.StatusReachedDeadline)
	return res.RowsAffected, res.Error
}
