package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"livetimer-echo/internal/repository"
)

type TimerAction string

const (
	ActionStart TimerAction = "start"
	ActionPause TimerAction = "pause"
	ActionReset TimerAction = "reset"
)

type TimerService struct {
	q *repository.Queries
}

func NewTimerService(q *repository.Queries) *TimerService {
	return &TimerService{
		q: q,
	}
}

type CreateTimerData struct {
	RoomID            string
	Title             string
	Description       string
	DurationMS        int64
	CompletionMessage string
}

func (s *TimerService) Create(ctx context.Context, data CreateTimerData) (repository.Timer, error) {
	if err := checkValidRequest(data.RoomID, data.Title); err != nil {
		return repository.Timer{}, err
	}
	if data.DurationMS <= 0 {
		return repository.Timer{}, errors.New("duration must be positive")
	}

	existing, err := s.q.GetTimersByRoom(ctx, data.RoomID)
	if err != nil {
		return repository.Timer{}, err
	}

	return s.q.CreateTimer(ctx, repository.CreateTimerParams{
		ID:                ulid.Make().String(),
		RoomID:            data.RoomID,
		Title:             data.Title,
		Description:       data.Description,
		DurationMS:        data.DurationMS,
		CompletionMessage: data.CompletionMessage,
		SortOrder:         int64(len(existing)),
	})
}

func (s *TimerService) Get(ctx context.Context, id string) (repository.Timer, error) {
	timer, err := s.q.GetTimer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.Timer{}, ErrNotFound
	}
	return timer, err
}

func (s *TimerService) ListByRoom(ctx context.Context, roomID string) ([]repository.Timer, error) {
	return s.q.GetTimersByRoom(ctx, roomID)
}

// UpdateState applies a start/pause/reset transition. Pausing rewrites
// the stored duration to the time remaining so a later start resumes
// where the countdown left off.
func (s *TimerService) UpdateState(ctx context.Context, id string, action TimerAction) (repository.Timer, error) {
	timer, err := s.Get(ctx, id)
	if err != nil {
		return repository.Timer{}, err
	}

	now := time.Now()
	params := repository.SetTimerStateParams{ID: id, DurationMS: timer.DurationMS}

	switch action {
	case ActionStart:
		end := now.Add(time.Duration(timer.DurationMS) * time.Millisecond)
		params.IsActive = true
		params.StartTimestamp = &now
		params.EndTimestamp = &end
	case ActionPause:
		params.IsActive = false
		params.StartTimestamp = timer.StartTimestamp
		params.EndTimestamp = timer.EndTimestamp
		if timer.EndTimestamp != nil {
			remaining := timer.EndTimestamp.Sub(now).Milliseconds()
			if remaining < 0 {
				remaining = 0
			}
			params.DurationMS = remaining
		}
	case ActionReset:
		end := now.Add(time.Duration(timer.DurationMS) * time.Millisecond)
		params.IsActive = false
		params.StartTimestamp = &now
		params.EndTimestamp = &end
	default:
		return repository.Timer{}, errors.New("invalid timer action")
	}

	return s.q.SetTimerState(ctx, params)
}

type UpdateTimerData struct {
	Title             string
	Description       string
	DurationMS        int64
	CompletionMessage string
}

func (s *TimerService) Update(ctx context.Context, id string, data UpdateTimerData) (repository.Timer, error) {
	timer, err := s.Get(ctx, id)
	if err != nil {
		return repository.Timer{}, err
	}
	if data.Title == "" {
		data.Title = timer.Title
	}
	if data.DurationMS <= 0 {
		data.DurationMS = timer.DurationMS
	}
	return s.q.UpdateTimer(ctx, repository.UpdateTimerParams{
		ID:                id,
		Title:             data.Title,
		Description:       data.Description,
		DurationMS:        data.DurationMS,
		CompletionMessage: data.CompletionMessage,
	})
}

func (s *TimerService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.q.DeleteTimer(ctx, id)
}

// Reorder rewrites sort_order to match the given timer id sequence.
func (s *TimerService) Reorder(ctx context.Context, roomID string, timerIDs []string) error {
	if roomID == "" {
		return errors.New("roomID can't be empty")
	}
	for i, id := range timerIDs {
		if err := s.q.SetTimerOrder(ctx, roomID, id, int64(i)); err != nil {
			return err
		}
	}
	return nil
}

// ExpiredTimers returns active timers whose end time has passed.
func (s *TimerService) ExpiredTimers(ctx context.Context) ([]repository.Timer, error) {
	return s.q.GetExpiredTimers(ctx, time.Now())
}

// MarkAsExpired deactivates a timer found past its end time.
func (s *TimerService) MarkAsExpired(ctx context.Context, id string) error {
	return s.q.MarkTimerExpired(ctx, id)
}

func checkValidRequest(roomID string, title string) error {
	if roomID == "" {
		return errors.New("roomID can't be empty")
	}
	if title == "" {
		return errors.New("title can't be empty")
	}
	return nil
}
