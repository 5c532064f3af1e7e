package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndMembers(t *testing.T) {
	r := NewRegistry()

	r.Register("c1", "room1", ConnInfo{UserID: "u1"})
	r.Register("c2", "room1", ConnInfo{UserID: "u2"})
	r.Register("c3", "room2", ConnInfo{UserID: "u3"})

	assert.ElementsMatch(t, []string{"c1", "c2"}, r.MembersOf("room1"))
	assert.ElementsMatch(t, []string{"c3"}, r.MembersOf("room2"))
	assert.Empty(t, r.MembersOf("unknown"))

	info, ok := r.InfoOf("c1")
	require.True(t, ok)
	assert.Equal(t, "c1", info.ID)
	assert.Equal(t, "room1", info.RoomID)
	assert.Equal(t, "u1", info.UserID)
}

func TestRegistry_RegisterIsIdempotentPerRoom(t *testing.T) {
	r := NewRegistry()

	r.Register("c1", "room1", ConnInfo{})
	r.Register("c1", "room1", ConnInfo{})

	assert.Len(t, r.MembersOf("room1"), 1)
}

func TestRegistry_RejoinMovesBetweenRooms(t *testing.T) {
	r := NewRegistry()

	r.Register("c1", "roomA", ConnInfo{})
	prev := r.Register("c1", "roomB", ConnInfo{})

	assert.Equal(t, "roomA", prev)
	assert.Empty(t, r.MembersOf("roomA"), "connection must leave A before joining B")
	assert.ElementsMatch(t, []string{"c1"}, r.MembersOf("roomB"))
	assert.NotContains(t, r.RoomIDs(), "roomA", "emptied room must be cleaned up")
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", "room1", ConnInfo{})
	r.Register("c2", "room1", ConnInfo{})

	roomID, ok := r.Unregister("c1")
	require.True(t, ok)
	assert.Equal(t, "room1", roomID)
	assert.ElementsMatch(t, []string{"c2"}, r.MembersOf("room1"))

	_, ok = r.InfoOf("c1")
	assert.False(t, ok, "metadata must be dropped with the connection")

	// Idempotent: a second unregister is a no-op.
	_, ok = r.Unregister("c1")
	assert.False(t, ok)

	// Last member out removes the room entry entirely.
	_, ok = r.Unregister("c2")
	require.True(t, ok)
	assert.Empty(t, r.RoomIDs())
}

func TestRegistry_OwnerIndex(t *testing.T) {
	r := NewRegistry()

	_, ok := r.OwnerOf("room1")
	assert.False(t, ok)

	r.RecordOwner("room1", "u1")
	owner, ok := r.OwnerOf("room1")
	require.True(t, ok)
	assert.Equal(t, "u1", owner)

	// Entries survive the room emptying; they are only consulted for
	// rooms with live members.
	r.Register("c1", "room1", ConnInfo{})
	r.Unregister("c1")
	owner, ok = r.OwnerOf("room1")
	require.True(t, ok)
	assert.Equal(t, "u1", owner)
}

func TestRegistry_Touch(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", "room1", ConnInfo{LastSeen: time.Unix(0, 0)})

	now := time.Now()
	r.Touch("c1", now)

	info, ok := r.InfoOf("c1")
	require.True(t, ok)
	assert.Equal(t, now, info.LastSeen)

	// Touching an unknown connection must not create one.
	r.Touch("ghost", now)
	_, ok = r.InfoOf("ghost")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	r := NewRegistry()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func(id string) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				r.Register(id, "room1", ConnInfo{})
				r.MembersOf("room1")
				r.Unregister(id)
			}
		}(string(rune('a' + i)))
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Empty(t, r.MembersOf("room1"))
	assert.Empty(t, r.RoomIDs())
}
