// Package services holds the business logic between the HTTP/socket
// handlers and the repository.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oklog/ulid/v2"

	"livetimer-echo/internal/repository"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// RoomService encapsulates room-related business logic.
type RoomService struct {
	q *repository.Queries
}

func NewRoomService(q *repository.Queries) *RoomService { return &RoomService{q: q} }

// Create creates a room owned by ownerID with a fresh public share token.
func (s *RoomService) Create(ctx context.Context, ownerID, name, description string) (repository.Room, error) {
	if name == "" {
		return repository.Room{}, errors.New("name is required")
	}
	if ownerID == "" {
		return repository.Room{}, errors.New("ownerId is required")
	}
	params := repository.CreateRoomParams{
		ID:          ulid.Make().String(),
		Name:        name,
		Description: description,
		ShareToken:  ulid.Make().String(),
		OwnerID:     ownerID,
	}
	return s.q.CreateRoom(ctx, params)
}

// List returns the rooms owned by a user, newest first.
func (s *RoomService) List(ctx context.Context, ownerID string) ([]repository.Room, error) {
	return s.q.GetRoomsByOwner(ctx, ownerID)
}

// Get returns a single room by id.
func (s *RoomService) Get(ctx context.Context, id string) (repository.Room, error) {
	if id == "" {
		return repository.Room{}, errors.New("id is required")
	}
	room, err := s.q.GetRoom(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.Room{}, ErrNotFound
	}
	return room, err
}

// FindByShareTokenWithTimers resolves the public share token used by
// anonymous viewers and attaches the room's timers.
func (s *RoomService) FindByShareTokenWithTimers(ctx context.Context, shareToken string) (*repository.RoomWithTimers, error) {
	if shareToken == "" {
		return nil, ErrNotFound
	}
	room, err := s.q.GetRoomByShareToken(ctx, shareToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.withTimers(ctx, room)
}

// FindByIDWithTimers returns a room and its timers, used for resyncs.
func (s *RoomService) FindByIDWithTimers(ctx context.Context, id string) (*repository.RoomWithTimers, error) {
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withTimers(ctx, room)
}

func (s *RoomService) withTimers(ctx context.Context, room repository.Room) (*repository.RoomWithTimers, error) {
	timers, err := s.q.GetTimersByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if timers == nil {
		timers = []repository.Timer{}
	}
	return &repository.RoomWithTimers{Room: room, Timers: timers}, nil
}

// Update edits a room's settings; only the owner may do this.
func (s *RoomService) Update(ctx context.Context, id, ownerID, name, description string) (repository.Room, error) {
	room, err := s.Get(ctx, id)
	if err != nil {
		return repository.Room{}, err
	}
	if room.OwnerID != ownerID {
		return repository.Room{}, ErrForbidden
	}
	if name == "" {
		name = room.Name
	}
	return s.q.UpdateRoom(ctx, repository.UpdateRoomParams{ID: id, Name: name, Description: description})
}

// Delete removes a room and, via cascade, its timers.
func (s *RoomService) Delete(ctx context.Context, id, ownerID string) error {
	room, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if room.OwnerID != ownerID {
		return ErrForbidden
	}
	return s.q.DeleteRoom(ctx, id)
}

// SetLiveMessage updates the owner-controlled message shown to viewers.
func (s *RoomService) SetLiveMessage(ctx context.Context, id, ownerID, message string) error {
	room, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if room.OwnerID != ownerID {
		return ErrForbidden
	}
	return s.q.UpdateRoomLiveMessage(ctx, id, message)
}
