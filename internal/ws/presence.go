package ws

import (
	"sort"
	"time"
)

// Presence derives viewer-only counts and rosters from the registry and
// emits the join/leave/count events. The room owner watching their own
// room is bookkeeping, not an audience change, so owner connections
// never appear in rosters and never raise user-joined/user-left.
type Presence struct {
	registry *Registry
	gateway  *Gateway
}

func NewPresence(registry *Registry, gateway *Gateway) *Presence {
	return &Presence{registry: registry, gateway: gateway}
}

// ViewerConnections returns the room's non-owner connections, ordered
// by connect time, with lastSeen refreshed at read time. Ownership is
// resolved against the owner index here rather than trusting the flag
// captured at join, which can predate the index entry.
func (p *Presence) ViewerConnections(roomID string) []ConnInfo {
	owner, _ := p.registry.OwnerOf(roomID)
	now := time.Now()

	var viewers []ConnInfo
	for _, connID := range p.registry.MembersOf(roomID) {
		info, ok := p.registry.InfoOf(connID)
		if !ok {
			continue
		}
		if p.isOwnerConn(info, owner) {
			continue
		}
		p.registry.Touch(connID, now)
		info.LastSeen = now
		viewers = append(viewers, info)
	}

	sort.Slice(viewers, func(i, j int) bool {
		return viewers[i].ConnectedAt.Before(viewers[j].ConnectedAt)
	})
	return viewers
}

// isOwnerConn excludes a connection only on the strength of its
// authenticated identity. The join-time flag is a hint that still gets
// re-validated; a claimed-but-unauthenticated user id never matches.
func (p *Presence) isOwnerConn(info ConnInfo, owner string) bool {
	return owner != "" && info.AuthUserID != "" && info.AuthUserID == owner
}

// BroadcastJoin emits user-joined unless the joining connection is the
// room owner.
func (p *Presence) BroadcastJoin(roomID string, info ConnInfo) {
	owner, _ := p.registry.OwnerOf(roomID)
	if p.isOwnerConn(info, owner) {
		return
	}
	p.gateway.EmitToRoom(roomID, EventUserJoined, UserJoinedData{
		RoomID:     roomID,
		Connection: info,
		TotalUsers: len(p.ViewerConnections(roomID)),
	})
}

// BroadcastLeave emits user-left unless the departed connection was the
// room owner. The caller resolves wasOwner before unregistering, while
// the connection's identity is still known.
func (p *Presence) BroadcastLeave(roomID, connID string, wasOwner bool) {
	if wasOwner {
		return
	}
	p.gateway.EmitToRoom(roomID, EventUserLeft, UserLeftData{
		RoomID:       roomID,
		ConnectionID: connID,
		TotalUsers:   len(p.ViewerConnections(roomID)),
	})
}

// BroadcastCountUpdate always emits the count and roster, even for
// owner-triggered changes: the displayed viewer count excludes the
// owner, but owner churn can still change the bookkeeping behind it.
func (p *Presence) BroadcastCountUpdate(roomID string) {
	viewers := p.ViewerConnections(roomID)
	if viewers == nil {
		viewers = []ConnInfo{}
	}
	p.gateway.EmitToRoom(roomID, EventUserCount, len(viewers))
	p.gateway.EmitToRoom(roomID, EventUserCountUpdate, UserCountUpdateData{
		RoomID:      roomID,
		Count:       len(viewers),
		Connections: viewers,
	})
}
