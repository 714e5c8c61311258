package utils

import (
	"context"

	"elearn/cache"
	"elearn/database"
	"elearn/logger"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// InitializeScheduler starts the deadline sweep (daily 00:05) and the hourly stats refresh.
func InitializeScheduler() *cron.Cron {
	log := logger.Log.With("service", "Scheduler")
	c := cron.New()

	c.AddFunc("5 0 * * *", func() {
		n, err := MarkReachedDeadlines(database.Database.Db, now.BeginningOfDay())
		if err != nil {
			log.Error("deadline sweep failed", "error", err)
			return
		}
		log.Info("deadline sweep done", "marked", n)
	})

	c.AddFunc("@hourly", func() {
		Tasks.Enqueue("refresh_all_course_stats", func(ctx context.Context) error {
			return RefreshAllCourseStatistics(ctx, database.Database.Db, cache.Default)
		})
	})

	c.Start()
	log.Info("scheduler started")
	return c
}
