package models

import "time"

// Base carries the primary key and timestamps shared by every table. Rows are hard deleted.
type Base struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}
