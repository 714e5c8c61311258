package models

import "time"

// LoginTracking records each successful sign-in.
type LoginTracking struct {
	Base
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	IPAddress string    `json:"ip_address" gorm:"size:64"`
	Device    string    `json:"device" gorm:"size:512"`
	Timestamp time.Time `json:"timestamp"`
}
