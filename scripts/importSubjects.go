package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"elearn/config"
	"elearn/database"
	"elearn/logger"
	courseModels "elearn/models/course"

	"gorm.io/gorm"
)

// Imports subjects from a CSV with a "title" column. Rows whose title already exists are skipped.
//
//	go run ./scripts subjects.csv
func main() {
	config.LoadConfig()
	if err := logger.Init(config.AppConfig.LogMode); err != nil {
		panic(err)
	}
	if err := database.ConnectDb(config.AppConfig); err != nil {
		logger.Log.Fatal("database connection failed", "error", err)
	}

	path := "subjects.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	file, err := os.Open(path)
	if err != nil {
		logger.Log.Fatal("failed to open CSV file", "path", path, "error", err)
	}
	defer file.Close()

	inserted, skipped, err := importSubjects(database.Database.Db, file)
	if err != nil {
		logger.Log.Fatal("import failed", "error", err)
	}
	logger.Log.Info("import complete", "inserted", inserted, "skipped", skipped)
}

func importSubjects(db *gorm.DB, r io.Reader) (inserted, skipped int, err error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return 0, 0, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return 0, 0, fmt.Errorf("csv file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col, ok := headerIndex["title"]
	if !ok {
		return 0, 0, fmt.Errorf("csv has no title column")
	}

	for _, row := range records[1:] {
		if col >= len(row) {
			skipped++
			continue
		}
		title := strings.TrimSpace(row[col])
		if title == "" {
			skipped++
			continue
		}

		var n int64
		db.Model(&courseModels.Subject{}).Where("title = ?", title).Count(&n)
		if n > 0 {
			skipped++
			continue
		}
		if err := db.Create(&courseModels.Subject{Title: title}).Error; err != nil {
			logger.Log.Warn("inserting subject failed", "title", title, "error", err)
			skipped++
			continue
		}
		inserted++
	}
	return inserted, skipped, nil
}
