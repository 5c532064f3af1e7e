package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_EmitToRoom(t *testing.T) {
	registry := NewRegistry()
	gateway := NewGateway(registry)

	inRoom := &recordingSender{}
	alsoInRoom := &recordingSender{}
	elsewhere := &recordingSender{}

	registry.Register("c1", "room1", ConnInfo{})
	registry.Register("c2", "room1", ConnInfo{})
	registry.Register("c3", "room2", ConnInfo{})
	gateway.Attach("c1", inRoom)
	gateway.Attach("c2", alsoInRoom)
	gateway.Attach("c3", elsewhere)

	gateway.EmitToRoom("room1", EventTestEvent, map[string]string{"message": "hi"})

	assert.Equal(t, 1, inRoom.count(EventTestEvent))
	assert.Equal(t, 1, alsoInRoom.count(EventTestEvent))
	assert.Equal(t, 0, elsewhere.count(EventTestEvent), "other rooms must not receive the event")

	var payload map[string]string
	inRoom.last(t, EventTestEvent, &payload)
	assert.Equal(t, "hi", payload["message"])
}

func TestGateway_EmitToEmptyRoomIsNoOp(t *testing.T) {
	gateway := NewGateway(NewRegistry())

	assert.NotPanics(t, func() {
		gateway.EmitToRoom("ghost-room", EventTimerStarted, map[string]string{"timerId": "t1"})
	})
}

func TestGateway_SlowConnectionDoesNotBlockOthers(t *testing.T) {
	registry := NewRegistry()
	gateway := NewGateway(registry)

	slow := &recordingSender{full: true}
	healthy := &recordingSender{}

	registry.Register("slow", "room1", ConnInfo{})
	registry.Register("healthy", "room1", ConnInfo{})
	gateway.Attach("slow", slow)
	gateway.Attach("healthy", healthy)

	gateway.EmitToRoom("room1", EventTestEvent, nil)

	assert.Equal(t, 0, slow.count(EventTestEvent))
	assert.Equal(t, 1, healthy.count(EventTestEvent))
}

func TestGateway_DetachedConnectionIsSkipped(t *testing.T) {
	registry := NewRegistry()
	gateway := NewGateway(registry)

	sender := &recordingSender{}
	registry.Register("c1", "room1", ConnInfo{})
	gateway.Attach("c1", sender)
	gateway.Detach("c1")

	assert.NotPanics(t, func() {
		gateway.EmitToRoom("room1", EventTestEvent, nil)
	})
	assert.Equal(t, 0, sender.count(EventTestEvent))
}

func TestGateway_RoomStats(t *testing.T) {
	registry := NewRegistry()
	gateway := NewGateway(registry)

	stats := gateway.RoomStats("room1")
	assert.Equal(t, 0, stats.ConnectedUsers)
	assert.False(t, stats.IsActive)

	registry.Register("c1", "room1", ConnInfo{UserID: "u1", Browser: "Chrome"})
	registry.Register("c2", "room1", ConnInfo{UserID: "u2"})

	stats = gateway.RoomStats("room1")
	assert.Equal(t, 2, stats.ConnectedUsers)
	assert.True(t, stats.IsActive)
	require.Len(t, stats.Connections, 2)

	all := gateway.AllRoomStats()
	require.Contains(t, all, "room1")
	assert.Equal(t, 2, all["room1"].ConnectedUsers)
}

func TestGateway_EnvelopeShape(t *testing.T) {
	registry := NewRegistry()
	gateway := NewGateway(registry)

	sender := &recordingSender{}
	registry.Register("c1", "room1", ConnInfo{})
	gateway.Attach("c1", sender)

	gateway.EmitToRoom("room1", EventUserCount, 3)

	envs := sender.events(EventUserCount)
	require.Len(t, envs, 1)
	var count int
	require.NoError(t, json.Unmarshal(envs[0].Data, &count))
	assert.Equal(t, 3, count)
}
