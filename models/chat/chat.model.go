package chat

import (
	"errors"
	"fmt"
	"time"

	"elearn/models"
	"elearn/models/course"

	"gorm.io/gorm"
)

// DefaultRoom is joined when the connection names no room.
const DefaultRoom = "general"

// ChatRoom is a named broadcast group, linked to the course whose slug equals its name.
type ChatRoom struct {
	models.Base
	Name         string        `json:"name" gorm:"size:255;uniqueIndex;not null"`
	CourseID     *uint         `json:"course_id" gorm:"index"`
	Participants []models.User `json:"participants,omitempty" gorm:"many2many:chat_room_participants;constraint:OnDelete:CASCADE"`
	Messages     []ChatMessage `json:"-" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// ChatMessage rows are read back ordered by Timestamp ascending.
type ChatMessage struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	RoomID    uint         `json:"room_id" gorm:"index;not null"`
	SenderID  uint         `json:"sender_id" gorm:"index;not null"`
	Sender    *models.User `json:"sender,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Content   string       `json:"content" gorm:"type:text;not null"`
	Timestamp time.Time    `json:"timestamp" gorm:"autoCreateTime;index"`
}

// GetOrCreateRoom returns the room called name, creating it and linking the course of the same slug.
func GetOrCreateRoom(db *gorm.DB, name string) (*ChatRoom, error) {
	var room ChatRoom
	err := db.Where("name = ?", name).First(&room).Error
	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room = ChatRoom{Name: name}
	var c course.Course
	if err := db.Select("id").Where("slug = ?", name).First(&c).Error; err == nil {
		room.CourseID = &c.ID
	}
	if err := db.Where(ChatRoom{Name: name}).Attrs(room).FirstOrCreate(&room).Error; err != nil {
		return nil, fmt.Errorf("create room %q: %w", name, err)
	}
	return &room, nil
}

// Join records the user as a participant of the room.
func Join(db *gorm.DB, room *ChatRoom, userID uint) error {
	var n int64
	if err := db.Table("chat_room_participants").
		Where("chat_room_id = ? AND user_id = ?", room.ID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return db.Table("chat_room_participants").Create(map[string]interface{}{
		"chat_room_id": room.ID,
		"user_id":      userID,
	}).Error
}

// SaveMessage persists a message in the named room, creating the room when absent.
func SaveMessage(db *gorm.DB, roomName string, senderID uint, text string) (*ChatMessage, error) {
	var msg ChatMessage
	err := db.Transaction(func(tx *gorm.DB) error {
		room, err := GetOrCreateRoom(tx, roomName)
		if err != nil {
			return err
		}
		if err := Join(tx, room, senderID); err != nil {
			return fmt.Errorf("join room: %w", err)
		}
		msg = ChatMessage{RoomID: room.ID, SenderID: senderID, Content: text}
		return tx.Create(&msg).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// RecentMessages returns up to limit of the newest messages of the room, oldest first.
func RecentMessages(db *gorm.DB, roomName string, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	var room ChatRoom
	if err := db.Where("name = ?", roomName).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []ChatMessage{}, nil
		}
		return nil, err
	}

	var msgs []ChatMessage
	if err := db.Where("room_id = ?", room.ID).
		Preload("Sender").
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// DeleteCourseRooms removes the rooms linked to a course along with their messages.
func DeleteCourseRooms(tx *gorm.DB, courseID uint) error {
	rooms := tx.Model(&ChatRoom{}).Select("id").Where("course_id = ?", courseID)
	if err := tx.Where("room_id IN (?)", rooms).Delete(&ChatMessage{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM chat_room_participants WHERE chat_room_id IN (?)", rooms).Error; err != nil {
		return err
	}
	return tx.Where("course_id = ?", courseID).Delete(&ChatRoom{}).Error
}
