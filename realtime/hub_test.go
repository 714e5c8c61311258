package realtime

import (
	"context"
	"testing"
	"time"

	"elearn/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverMarksSender(t *testing.T) {
	hub := NewHub(logger.Log)
	alice := hub.Join("go-basics", 1)
	bob := hub.Join("go-basics", 2)
	outsider := hub.Join("lobby", 3)

	hub.Deliver(Event{Room: "go-basics", Message: "hi", SenderID: 1, SenderUsername: "alice", Timestamp: time.Now()})

	got := <-alice.Outbound
	assert.True(t, got.IsSelf)
	assert.Equal(t, "hi", got.Message)

	got = <-bob.Outbound
	assert.False(t, got.IsSelf)
	assert.Equal(t, "alice", got.SenderUsername)

	select {
	case f := <-outsider.Outbound:
		t.Fatalf("frame leaked across rooms: %+v", f)
	default:
	}
}

func TestLeaveClosesOutbound(t *testing.T) {
	hub := NewHub(logger.Log)
	c := hub.Join("lobby", 1)
	require.Equal(t, 1, hub.Members("lobby"))

	hub.Leave(c)
	hub.Leave(c)

	_, open := <-c.Outbound
	assert.False(t, open)
	assert.Equal(t, 0, hub.Members("lobby"))

	// delivering to an empty room is a no-op
	hub.Deliver(Event{Room: "lobby", Message: "anyone?"})
}

func TestDeliverDropsForFullBuffer(t *testing.T) {
	hub := NewHub(logger.Log)
	c := hub.Join("lobby", 1)
	for i := 0; i < cap(c.Outbound)+5; i++ {
		hub.Deliver(Event{Room: "lobby", Message: "spam"})
	}
	assert.Len(t, c.Outbound, cap(c.Outbound))
}

func TestLocalBrokerPreservesOrder(t *testing.T) {
	b := NewLocalBroker()
	ctx := context.Background()
	require.Error(t, b.Publish(ctx, Event{Room: "lobby"}))

	var got []string
	require.NoError(t, b.Start(ctx, func(ev Event) { got = append(got, ev.Message) }))
	for _, m := range []string{"one", "two", "three"} {
		require.NoError(t, b.Publish(ctx, Event{Room: "lobby", Message: m}))
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
	assert.NoError(t, b.Close())
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "chat_general", GroupName("general"))
}
