package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Sender is one connection's outbound side. Send is best-effort and
// must never block; it reports whether the message was accepted.
type Sender interface {
	Send(msg []byte) bool
}

// Gateway is the broadcast entry point shared by the socket sessions,
// the HTTP handlers and the expiry sweeper. It fans an event out to
// every connection currently in a room, and optionally mirrors it to a
// pub/sub backplane so other processes can do the same for their own
// connections.
type Gateway struct {
	registry *Registry

	mu      sync.RWMutex
	senders map[string]Sender

	backplane *Backplane
}

func NewGateway(registry *Registry) *Gateway {
	return &Gateway{
		registry: registry,
		senders:  make(map[string]Sender),
	}
}

// SetBackplane wires cross-process fan-out. Call before serving.
func (g *Gateway) SetBackplane(b *Backplane) {
	g.backplane = b
}

func (g *Gateway) Attach(connID string, s Sender) {
	g.mu.Lock()
	g.senders[connID] = s
	g.mu.Unlock()
}

func (g *Gateway) Detach(connID string) {
	g.mu.Lock()
	delete(g.senders, connID)
	g.mu.Unlock()
}

// EmitToRoom delivers an event to every connection in the room.
// Broadcasting to an empty or unknown room is a silent no-op so
// controllers can fire before any viewer has joined.
func (g *Gateway) EmitToRoom(roomID, event string, data any) {
	raw := mustMarshal(data)
	g.emitLocal(roomID, event, raw)

	if g.backplane != nil {
		if err := g.backplane.Publish(context.Background(), roomID, event, raw); err != nil {
			log.Printf("[gateway] backplane publish failed for %s: %v", event, err)
		}
	}
}

// emitLocal fans out to this process's connections only. Remote events
// arriving from the backplane land here without being re-published.
func (g *Gateway) emitLocal(roomID, event string, data json.RawMessage) {
	members := g.registry.MembersOf(roomID)
	if len(members) == 0 {
		return
	}

	msg, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, connID := range members {
		sender, ok := g.senders[connID]
		if !ok {
			continue
		}
		if !sender.Send(msg) {
			log.Printf("[gateway] dropped %s for slow connection %s", event, connID)
		}
	}
}

// RoomStats reports the live connection count and roster for one room.
func (g *Gateway) RoomStats(roomID string) RoomStats {
	members := g.registry.MembersOf(roomID)
	connections := make([]ConnInfo, 0, len(members))
	for _, connID := range members {
		if info, ok := g.registry.InfoOf(connID); ok {
			connections = append(connections, info)
		}
	}
	return RoomStats{
		ConnectedUsers: len(members),
		IsActive:       len(members) > 0,
		Connections:    connections,
	}
}

func (g *Gateway) AllRoomStats() map[string]RoomStats {
	stats := make(map[string]RoomStats)
	for _, roomID := range g.registry.RoomIDs() {
		stats[roomID] = g.RoomStats(roomID)
	}
	return stats
}
