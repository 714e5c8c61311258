package chat_test

import (
	"fmt"
	"testing"

	"elearn/database"
	"elearn/models"
	"elearn/models/chat"
	"elearn/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, models.User) {
	t.Helper()
	db, err := database.OpenSQLite("chat_" + t.Name())
	require.NoError(t, err)
	u := models.User{Username: "alice", Email: "alice@example.com", Password: "x", Student: &models.Student{}}
	require.NoError(t, db.Create(&u).Error)
	return db, u
}

func TestGetOrCreateRoomLinksCourse(t *testing.T) {
	db, u := setup(t)
	subject := course.Subject{Title: "Programming"}
	require.NoError(t, db.Create(&subject).Error)
	c := course.Course{Title: "Go Basics", SubjectID: subject.ID, RequiredTime: 5, OwnerID: u.ID}
	require.NoError(t, db.Create(&c).Error)

	room, err := chat.GetOrCreateRoom(db, "go-basics")
	require.NoError(t, err)
	require.NotNil(t, room.CourseID)
	assert.Equal(t, c.ID, *room.CourseID)

	again, err := chat.GetOrCreateRoom(db, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, room.ID, again.ID)

	general, err := chat.GetOrCreateRoom(db, chat.DefaultRoom)
	require.NoError(t, err)
	assert.Nil(t, general.CourseID)
}

func TestJoinIsIdempotent(t *testing.T) {
	db, u := setup(t)
	room, err := chat.GetOrCreateRoom(db, "lobby")
	require.NoError(t, err)

	require.NoError(t, chat.Join(db, room, u.ID))
	require.NoError(t, chat.Join(db, room, u.ID))

	var n int64
	require.NoError(t, db.Table("chat_room_participants").Where("chat_room_id = ?", room.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestRecentMessagesReturnsNewestOldestFirst(t *testing.T) {
	db, u := setup(t)
	for i := 0; i < 5; i++ {
		_, err := chat.SaveMessage(db, "lobby", u.ID, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	msgs, err := chat.RecentMessages(db, "lobby", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg 2", msgs[0].Content)
	assert.Equal(t, "msg 4", msgs[2].Content)
	require.NotNil(t, msgs[0].Sender)
	assert.Equal(t, "alice", msgs[0].Sender.Username)

	none, err := chat.RecentMessages(db, "empty", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteCourseRooms(t *testing.T) {
	db, u := setup(t)
	subject := course.Subject{Title: "Programming"}
	require.NoError(t, db.Create(&subject).Error)
	c := course.Course{Title: "Go Basics", SubjectID: subject.ID, RequiredTime: 5, OwnerID: u.ID}
	require.NoError(t, db.Create(&c).Error)

	_, err := chat.SaveMessage(db, "go-basics", u.ID, "hi")
	require.NoError(t, err)
	_, err = chat.SaveMessage(db, "lobby", u.ID, "hello")
	require.NoError(t, err)

	require.NoError(t, chat.DeleteCourseRooms(db, c.ID))

	var rooms []chat.ChatRoom
	require.NoError(t, db.Find(&rooms).Error)
	require.Len(t, rooms, 1)
	assert.Equal(t, "lobby", rooms[0].Name)

	var msgs int64
	require.NoError(t, db.Model(&chat.ChatMessage{}).Count(&msgs).Error)
	assert.EqualValues(t, 1, msgs)
}
