// Package ws is the realtime layer: connection registry, presence
// bookkeeping, room fan-out and the per-connection protocol handler.
package ws

import (
	"encoding/json"
	"time"
)

// Client -> server events.
const (
	EventJoinRoom      = "join-room"
	EventRequestSync   = "request-sync"
	EventTimerSelected = "timer-selected"
	EventPing          = "ping"
)

// Server -> client events.
const (
	EventRoomState          = "room-state"
	EventError              = "error"
	EventPong               = "pong"
	EventUserJoined         = "user-joined"
	EventUserLeft           = "user-left"
	EventUserCount          = "user-count"
	EventUserCountUpdate    = "user-count-update"
	EventTimerStarted       = "timer-started"
	EventTimerPaused        = "timer-paused"
	EventTimerStopped       = "timer-stopped"
	EventTimerUpdate        = "timer-update"
	EventTimerFinished      = "timer-finished"
	EventTimerCreated       = "timer-created"
	EventTimerDeleted       = "timer-deleted"
	EventLiveMessageUpdated = "live-message-updated"
	EventRoomSettingChanged = "room-setting-changed"
	EventTestEvent          = "test-event"
)

// Envelope is the framing for every message on the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinRoomData struct {
	ShareToken string `json:"shareToken"`
	UserID     string `json:"userId,omitempty"`
}

type TimerSelectedData struct {
	RoomID  string `json:"roomId"`
	TimerID string `json:"timerId"`
}

type ErrorData struct {
	Message string `json:"message"`
}

type UserJoinedData struct {
	RoomID     string   `json:"roomId"`
	Connection ConnInfo `json:"connection"`
	TotalUsers int      `json:"totalUsers"`
}

type UserLeftData struct {
	RoomID       string `json:"roomId"`
	ConnectionID string `json:"connectionId"`
	TotalUsers   int    `json:"totalUsers"`
}

type UserCountUpdateData struct {
	RoomID      string     `json:"roomId"`
	Count       int        `json:"count"`
	Connections []ConnInfo `json:"connections"`
}

type TimerFinishedData struct {
	TimerID           string `json:"timerId"`
	Title             string `json:"title"`
	RoomID            string `json:"roomId"`
	CompletionMessage string `json:"completionMessage,omitempty"`
}

// ConnInfo describes one live connection for presence rosters.
// authUserID stays unexported from the wire: the claimed UserID is
// telemetry, the authenticated id is what ownership checks trust.
type ConnInfo struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	UserID      string    `json:"userId,omitempty"`
	AuthUserID  string    `json:"-"`
	IsOwner     bool      `json:"isOwner"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	Device      string    `json:"device"`
	UserAgent   string    `json:"userAgent,omitempty"`
	RemoteAddr  string    `json:"-"`
	ConnectedAt time.Time `json:"connectedAt"`
	LastSeen    time.Time `json:"lastSeen"`
}

type RoomStats struct {
	ConnectedUsers int        `json:"connectedUsers"`
	IsActive       bool       `json:"isActive"`
	Connections    []ConnInfo `json:"connections"`
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// Event payloads are plain structs and maps; this cannot fail
		// for any value the service constructs.
		return json.RawMessage(`null`)
	}
	return data
}
