package chatController

import (
	"context"
	"strings"

	"elearn/config"
	"elearn/database"
	"elearn/logger"
	"elearn/middleware"
	chatModels "elearn/models/chat"
	"elearn/realtime"

	"github.com/bytedance/sonic"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const chatUserKey = "chatUser"

type inboundFrame struct {
	Message string `json:"message"`
}

func roomName(c *fiber.Ctx) string {
	if room := strings.TrimSpace(c.Params("room_name")); room != "" {
		return room
	}
	return chatModels.DefaultRoom
}

func historyLimit() int {
	if config.AppConfig == nil || config.AppConfig.ChatHistoryLimit <= 0 {
		return 20
	}
	return config.AppConfig.ChatHistoryLimit
}

// Upgrade admits authenticated WebSocket handshakes and hands the caller to the socket.
func Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	c.Locals(chatUserKey, p)
	return c.Next()
}

// Socket serves one chat connection.
var Socket = websocket.New(serve)

func serve(conn *websocket.Conn) {
	p, _ := conn.Locals(chatUserKey).(*middleware.Principal)
	// params are only bound on the route, not in the group middleware
	room := strings.TrimSpace(conn.Params("room_name", chatModels.DefaultRoom))
	if p == nil || room == "" {
		_ = conn.Close()
		return
	}
	log := logger.Log.With("room", room, "user_id", p.UserID)
	db := database.Database.Db

	chatRoom, err := chatModels.GetOrCreateRoom(db, room)
	if err != nil {
		log.Error("opening chat room failed", "error", err)
		_ = conn.Close()
		return
	}
	if err := chatModels.Join(db, chatRoom, p.UserID); err != nil {
		log.Warn("recording participant failed", "error", err)
	}

	history, err := chatModels.RecentMessages(db, room, historyLimit())
	if err != nil {
		log.Warn("loading chat history failed", "error", err)
	}

	client := realtime.DefaultHub.Join(room, p.UserID)
	done := make(chan struct{})
	go writeLoop(conn, client, historyFrames(history, p.UserID), done)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var in inboundFrame
		if err := sonic.Unmarshal(raw, &in); err != nil {
			log.Debug("ignoring malformed chat frame", "error", err)
			continue
		}
		text := strings.TrimSpace(in.Message)
		if text == "" {
			continue
		}

		msg, err := chatModels.SaveMessage(db, room, p.UserID, text)
		if err != nil {
			log.Error("saving chat message failed", "error", err)
			continue
		}
		ev := realtime.Event{
			Room:           room,
			Message:        msg.Content,
			SenderID:       p.UserID,
			SenderUsername: p.Username,
			Timestamp:      msg.Timestamp,
		}
		if err := realtime.DefaultBroker.Publish(context.Background(), ev); err != nil {
			log.Error("publishing chat message failed", "error", err)
		}
	}

	realtime.DefaultHub.Leave(client)
	<-done
}

func historyFrames(msgs []chatModels.ChatMessage, userID uint) []realtime.Frame {
	frames := make([]realtime.Frame, 0, len(msgs))
	for _, m := range msgs {
		username := ""
		if m.Sender != nil {
			username = m.Sender.Username
		}
		f := realtime.Event{
			Message:        m.Content,
			SenderID:       m.SenderID,
			SenderUsername: username,
			Timestamp:      m.Timestamp,
		}.FrameFor(userID)
		f.History = true
		frames = append(frames, f)
	}
	return frames
}

// writeLoop is the only writer on conn. It exits once the hub closes the client's channel.
func writeLoop(conn *websocket.Conn, client *realtime.Client, backlog []realtime.Frame, done chan<- struct{}) {
	defer close(done)

	write := func(f realtime.Frame) bool {
		raw, err := sonic.Marshal(f)
		if err != nil {
			return true
		}
		return conn.WriteMessage(websocket.TextMessage, raw) == nil
	}

	healthy := true
	for _, f := range backlog {
		if healthy = write(f); !healthy {
			_ = conn.Close()
			break
		}
	}
	for f := range client.Outbound {
		if !healthy {
			continue
		}
		if healthy = write(f); !healthy {
			_ = conn.Close()
		}
	}
}

// RoomMessages returns the persisted history of a room, oldest first.
func RoomMessages(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", historyLimit())
	if limit <= 0 || limit > 100 {
		limit = historyLimit()
	}

	msgs, err := chatModels.RecentMessages(database.Database.Db, roomName(c), limit)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch messages!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Messages fetched successfully.", msgs)
}
