package ws

import (
	"sync"
	"time"
)

// Registry is the authoritative in-memory map of live connections. It
// owns three tables: connection -> info, room -> member set, and
// room -> owner user id. Every mutation goes through here so the
// invariants hold: a connection belongs to at most one room, and an
// empty member set is removed together with the removal that emptied it.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]ConnInfo
	rooms  map[string]map[string]struct{}
	owners map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]ConnInfo),
		rooms:  make(map[string]map[string]struct{}),
		owners: make(map[string]string),
	}
}

// Register adds connID to roomID's member set, creating the set if
// absent. A connection already registered elsewhere is first removed
// from its previous room; the previous room id is returned so callers
// can emit leave side effects for it.
func (r *Registry) Register(connID, roomID string, info ConnInfo) (prevRoom string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[connID]; ok && prev.RoomID != roomID {
		prevRoom = prev.RoomID
		r.removeLocked(connID, prev.RoomID)
	}

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[roomID] = members
	}
	members[connID] = struct{}{}

	info.ID = connID
	info.RoomID = roomID
	r.conns[connID] = info
	return prevRoom
}

// Unregister removes connID from whatever room it belongs to and drops
// its metadata. Idempotent; reports the room it was removed from.
func (r *Registry) Unregister(connID string) (roomID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, found := r.conns[connID]
	if !found {
		return "", false
	}
	r.removeLocked(connID, info.RoomID)
	return info.RoomID, true
}

// removeLocked must run under r.mu. Membership removal and empty-set
// cleanup happen together so no observer sees a dangling empty room.
func (r *Registry) removeLocked(connID, roomID string) {
	delete(r.conns, connID)
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// MembersOf returns a snapshot of the room's member ids; empty for an
// unknown room.
func (r *Registry) MembersOf(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) InfoOf(connID string) (ConnInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.conns[connID]
	return info, ok
}

// Touch refreshes a connection's lastSeen timestamp.
func (r *Registry) Touch(connID string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.conns[connID]; ok {
		info.LastSeen = now
		r.conns[connID] = info
	}
}

// RecordOwner notes who owns a room. Entries are never evicted; a stale
// entry is harmless because it is only consulted for rooms that still
// have live members.
func (r *Registry) RecordOwner(roomID, ownerUserID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[roomID] = ownerUserID
}

func (r *Registry) OwnerOf(roomID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[roomID]
	return owner, ok
}

// RoomIDs lists rooms with at least one live connection.
func (r *Registry) RoomIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}
