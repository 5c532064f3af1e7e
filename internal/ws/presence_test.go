package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type presenceFixture struct {
	registry *Registry
	gateway  *Gateway
	presence *Presence
}

func newPresenceFixture() *presenceFixture {
	registry := NewRegistry()
	gateway := NewGateway(registry)
	return &presenceFixture{
		registry: registry,
		gateway:  gateway,
		presence: NewPresence(registry, gateway),
	}
}

func (f *presenceFixture) join(connID string, info ConnInfo) *recordingSender {
	sender := &recordingSender{}
	f.registry.Register(connID, "room1", info)
	f.gateway.Attach(connID, sender)
	return sender
}

func ownerInfo(connID string) ConnInfo {
	return ConnInfo{ID: connID, UserID: "owner-1", AuthUserID: "owner-1", IsOwner: true}
}

func viewerInfo(connID string) ConnInfo {
	return ConnInfo{ID: connID, ConnectedAt: time.Now()}
}

func TestPresence_ViewerConnectionsExcludesOwner(t *testing.T) {
	f := newPresenceFixture()
	f.registry.RecordOwner("room1", "owner-1")

	f.join("admin", ownerInfo("admin"))
	f.join("v1", viewerInfo("v1"))
	f.join("v2", viewerInfo("v2"))

	viewers := f.presence.ViewerConnections("room1")
	require.Len(t, viewers, 2)
	for _, v := range viewers {
		assert.NotEqual(t, "admin", v.ID)
	}
}

func TestPresence_ClaimedOwnerIDDoesNotHideViewer(t *testing.T) {
	f := newPresenceFixture()
	f.registry.RecordOwner("room1", "owner-1")

	// An anonymous connection claiming the owner's user id is still a
	// viewer: only the authenticated id counts for exclusion.
	impostor := viewerInfo("impostor")
	impostor.UserID = "owner-1"
	f.join("impostor", impostor)

	viewers := f.presence.ViewerConnections("room1")
	require.Len(t, viewers, 1)
	assert.Equal(t, "impostor", viewers[0].ID)
}

func TestPresence_ViewerConnectionsRefreshesLastSeen(t *testing.T) {
	f := newPresenceFixture()
	stale := viewerInfo("v1")
	stale.LastSeen = time.Unix(0, 0)
	f.join("v1", stale)

	viewers := f.presence.ViewerConnections("room1")
	require.Len(t, viewers, 1)
	assert.WithinDuration(t, time.Now(), viewers[0].LastSeen, time.Second)

	info, ok := f.registry.InfoOf("v1")
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), info.LastSeen, time.Second)
}

// Walks the full owner/viewer scenario: owner joins silently, viewers
// raise join events and counts, owner leaves silently.
func TestPresence_OwnerAndViewerLifecycle(t *testing.T) {
	f := newPresenceFixture()
	f.registry.RecordOwner("room1", "owner-1")

	// Owner joins: no user-joined, count stays 0.
	adminSender := f.join("admin", ownerInfo("admin"))
	f.presence.BroadcastJoin("room1", ownerInfo("admin"))
	f.presence.BroadcastCountUpdate("room1")

	assert.Equal(t, 0, adminSender.count(EventUserJoined))
	var count int
	adminSender.last(t, EventUserCount, &count)
	assert.Equal(t, 0, count)

	// First viewer joins: user-joined with totalUsers 1, count 1.
	v1 := f.join("v1", viewerInfo("v1"))
	f.presence.BroadcastJoin("room1", viewerInfo("v1"))
	f.presence.BroadcastCountUpdate("room1")

	var joined UserJoinedData
	adminSender.last(t, EventUserJoined, &joined)
	assert.Equal(t, "room1", joined.RoomID)
	assert.Equal(t, 1, joined.TotalUsers)

	// Second viewer joins: two user-joined events total, count 2.
	f.join("v2", viewerInfo("v2"))
	f.presence.BroadcastJoin("room1", viewerInfo("v2"))
	f.presence.BroadcastCountUpdate("room1")

	assert.Equal(t, 2, adminSender.count(EventUserJoined))
	adminSender.last(t, EventUserCount, &count)
	assert.Equal(t, 2, count)

	var update UserCountUpdateData
	adminSender.last(t, EventUserCountUpdate, &update)
	assert.Equal(t, 2, update.Count)
	assert.Len(t, update.Connections, 2)

	// Owner leaves: no user-left, count still 2.
	f.registry.Unregister("admin")
	f.gateway.Detach("admin")
	f.presence.BroadcastLeave("room1", "admin", true)
	f.presence.BroadcastCountUpdate("room1")

	assert.Equal(t, 0, v1.count(EventUserLeft))
	v1.last(t, EventUserCount, &count)
	assert.Equal(t, 2, count)

	// A viewer leaves: user-left with totalUsers 1, count 1.
	f.registry.Unregister("v2")
	f.gateway.Detach("v2")
	f.presence.BroadcastLeave("room1", "v2", false)
	f.presence.BroadcastCountUpdate("room1")

	var left UserLeftData
	v1.last(t, EventUserLeft, &left)
	assert.Equal(t, "v2", left.ConnectionID)
	assert.Equal(t, 1, left.TotalUsers)
	v1.last(t, EventUserCount, &count)
	assert.Equal(t, 1, count)
}

func TestPresence_CountUpdateSendsEmptyRosterNotNull(t *testing.T) {
	f := newPresenceFixture()
	f.registry.RecordOwner("room1", "owner-1")
	admin := f.join("admin", ownerInfo("admin"))

	f.presence.BroadcastCountUpdate("room1")

	var update UserCountUpdateData
	admin.last(t, EventUserCountUpdate, &update)
	assert.Equal(t, 0, update.Count)
	assert.NotNil(t, update.Connections)
}
