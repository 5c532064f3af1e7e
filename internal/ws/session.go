package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"livetimer-echo/internal/auth"
	"livetimer-echo/internal/repository"
	"livetimer-echo/internal/services"
	"livetimer-echo/internal/useragent"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// RoomStore is the external room lookup the session depends on.
// *services.RoomService satisfies it.
type RoomStore interface {
	FindByShareTokenWithTimers(ctx context.Context, shareToken string) (*repository.RoomWithTimers, error)
	FindByIDWithTimers(ctx context.Context, id string) (*repository.RoomWithTimers, error)
}

// EventSender delivers an event to the session's own connection.
type EventSender interface {
	SendEvent(event string, data any)
}

type RoomStatePayload struct {
	repository.RoomWithTimers
	IsAdmin bool `json:"isAdmin"`
}

// Session is the per-connection protocol handler. A connection is
// Unjoined until join-room succeeds, Joined until it leaves or joins a
// different room, and Left once the connection closes. The read loop
// invokes it sequentially, so it needs no locking of its own.
type Session struct {
	connID   string
	identity *auth.Identity

	userAgent  string
	remoteAddr string

	rooms    RoomStore
	registry *Registry
	presence *Presence
	gateway  *Gateway
	out      EventSender

	roomID string
}

func NewSession(connID string, identity *auth.Identity, userAgent, remoteAddr string,
	rooms RoomStore, registry *Registry, presence *Presence, gateway *Gateway, out EventSender) *Session {
	return &Session{
		connID:     connID,
		identity:   identity,
		userAgent:  userAgent,
		remoteAddr: remoteAddr,
		rooms:      rooms,
		registry:   registry,
		presence:   presence,
		gateway:    gateway,
		out:        out,
	}
}

// HandleMessage dispatches one inbound envelope.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.out.SendEvent(EventError, ErrorData{Message: "Invalid message"})
		return
	}

	switch env.Event {
	case EventJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			s.out.SendEvent(EventError, ErrorData{Message: "Invalid join payload"})
			return
		}
		s.HandleJoin(ctx, data)
	case EventRequestSync:
		s.HandleSync(ctx)
	case EventTimerSelected:
		var data TimerSelectedData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			s.out.SendEvent(EventError, ErrorData{Message: "Invalid payload"})
			return
		}
		s.HandleSelectTimer(data)
	case EventPing:
		s.out.SendEvent(EventPong, nil)
	default:
		log.Printf("[session] %s sent unknown event %q", s.connID, env.Event)
	}
}

// HandleJoin resolves the share token, registers the connection and
// replays the room snapshot to the caller. Joining while already in a
// different room leaves that room first, with its leave side effects.
func (s *Session) HandleJoin(ctx context.Context, data JoinRoomData) {
	room, err := s.rooms.FindByShareTokenWithTimers(ctx, data.ShareToken)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			s.out.SendEvent(EventError, ErrorData{Message: "Room not found"})
		} else {
			log.Printf("[session] %s join failed: %v", s.connID, err)
			s.out.SendEvent(EventError, ErrorData{Message: "Failed to join room"})
		}
		return
	}

	// The claimed id is telemetry for anonymous viewers; only the
	// authenticated identity can make this connection the owner.
	userID := data.UserID
	authUserID := ""
	isAdmin := false
	if s.identity != nil {
		userID = s.identity.ID
		authUserID = s.identity.ID
		isAdmin = s.identity.ID == room.OwnerID
	}

	if s.roomID != "" && s.roomID != room.ID {
		s.leaveRoom()
	}

	parsed := useragent.Parse(s.userAgent)
	now := time.Now()
	info := ConnInfo{
		ID:          s.connID,
		RoomID:      room.ID,
		UserID:      userID,
		AuthUserID:  authUserID,
		IsOwner:     isAdmin,
		Browser:     parsed.Browser,
		OS:          parsed.OS,
		Device:      parsed.Device,
		UserAgent:   s.userAgent,
		RemoteAddr:  s.remoteAddr,
		ConnectedAt: now,
		LastSeen:    now,
	}

	s.registry.RecordOwner(room.ID, room.OwnerID)
	s.registry.Register(s.connID, room.ID, info)
	s.roomID = room.ID

	s.out.SendEvent(EventRoomState, RoomStatePayload{RoomWithTimers: *room, IsAdmin: isAdmin})

	s.presence.BroadcastJoin(room.ID, info)
	s.presence.BroadcastCountUpdate(room.ID)

	role := "viewer"
	if isAdmin {
		role = "admin"
	}
	log.Printf("[session] %s joined room %s as %s", s.connID, room.ID, role)
}

// HandleSync re-sends the room snapshot to the caller only. No
// broadcast side effects; used after reconnects or suspected drift.
func (s *Session) HandleSync(ctx context.Context) {
	if s.roomID == "" {
		return
	}
	room, err := s.rooms.FindByIDWithTimers(ctx, s.roomID)
	if err != nil {
		log.Printf("[session] %s sync failed: %v", s.connID, err)
		s.out.SendEvent(EventError, ErrorData{Message: "Failed to sync room state"})
		return
	}
	s.out.SendEvent(EventRoomState, RoomStatePayload{RoomWithTimers: *room, IsAdmin: s.isOwner()})
}

// HandleSelectTimer broadcasts the owner's timer selection to the room.
func (s *Session) HandleSelectTimer(data TimerSelectedData) {
	if s.roomID == "" || !s.isOwner() {
		s.out.SendEvent(EventError, ErrorData{Message: "Permission denied"})
		return
	}
	s.gateway.EmitToRoom(s.roomID, EventTimerSelected, TimerSelectedData{
		RoomID:  s.roomID,
		TimerID: data.TimerID,
	})
}

// Leave runs the disconnect path; safe to call on an unjoined session.
func (s *Session) Leave() {
	if s.roomID == "" {
		return
	}
	s.leaveRoom()
}

func (s *Session) leaveRoom() {
	roomID := s.roomID
	wasOwner := s.isOwner()
	s.registry.Unregister(s.connID)
	s.roomID = ""

	s.presence.BroadcastLeave(roomID, s.connID, wasOwner)
	s.presence.BroadcastCountUpdate(roomID)
}

// isOwner re-validates against the owner index rather than trusting
// state captured at join time.
func (s *Session) isOwner() bool {
	if s.identity == nil || s.roomID == "" {
		return false
	}
	owner, ok := s.registry.OwnerOf(s.roomID)
	return ok && owner == s.identity.ID
}
