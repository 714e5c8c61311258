package realtime

import (
	"sync"
	"time"

	"elearn/logger"

	"github.com/google/uuid"
)

// GroupName is the broadcast group of a room.
func GroupName(room string) string { return "chat_" + room }

// Event is one chat message as it travels through the broker.
type Event struct {
	Room           string    `json:"room"`
	Message        string    `json:"message"`
	SenderID       uint      `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Timestamp      time.Time `json:"timestamp"`
}

// Frame is what a connection receives. IsSelf is computed per recipient.
type Frame struct {
	Message        string    `json:"message"`
	SenderID       uint      `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Timestamp      time.Time `json:"timestamp"`
	IsSelf         bool      `json:"is_self"`
	History        bool      `json:"history,omitempty"`
}

// FrameFor renders the event for the given recipient.
func (e Event) FrameFor(userID uint) Frame {
	return Frame{
		Message:        e.Message,
		SenderID:       e.SenderID,
		SenderUsername: e.SenderUsername,
		Timestamp:      e.Timestamp,
		IsSelf:         e.SenderID == userID,
	}
}

type Client struct {
	ID       uuid.UUID
	UserID   uint
	Room     string
	Outbound chan Frame
}

// Hub tracks the connections joined to each group on this process.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]bool
	log    *logger.Logger
}

// DefaultHub serves the chat endpoint.
var DefaultHub = NewHub(logger.Log)

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		groups: make(map[string]map[*Client]bool),
		log:    log.With("service", "ChatHub"),
	}
}

// Join registers a new connection for userID in room.
func (h *Hub) Join(room string, userID uint) *Client {
	c := &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Room:     room,
		Outbound: make(chan Frame, 64),
	}
	group := GroupName(room)

	h.mu.Lock()
	if h.groups[group] == nil {
		h.groups[group] = make(map[*Client]bool)
	}
	h.groups[group][c] = true
	h.mu.Unlock()

	h.log.Debug("client joined", "group", group, "client_id", c.ID.String())
	return c
}

// Leave removes the connection and closes its outbound channel.
func (h *Hub) Leave(c *Client) {
	group := GroupName(c.Room)

	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok || !members[c] {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.groups, group)
	}
	close(c.Outbound)
	h.log.Debug("client left", "group", group, "client_id", c.ID.String())
}

// Deliver fans the event out to every connection in its room. A connection whose
// buffer is full misses the frame rather than stalling the room.
func (h *Hub) Deliver(ev Event) {
	group := GroupName(ev.Room)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.groups[group] {
		select {
		case c.Outbound <- ev.FrameFor(c.UserID):
		default:
			h.log.Warn("dropping chat frame for slow client", "group", group, "client_id", c.ID.String())
		}
	}
}

// Members counts the connections currently joined to room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[GroupName(room)])
}
