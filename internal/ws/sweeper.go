package ws

import (
	"context"
	"log"
	"time"

	"livetimer-echo/internal/repository"
)

// TimerStore is the external timer lookup the sweeper depends on.
// *services.TimerService satisfies it.
type TimerStore interface {
	ExpiredTimers(ctx context.Context) ([]repository.Timer, error)
	MarkAsExpired(ctx context.Context, id string) error
}

// Emitter is the slice of the gateway the sweeper uses.
type Emitter interface {
	EmitToRoom(roomID, event string, data any)
}

// Sweeper periodically deactivates timers past their end time and
// announces timer-finished to their rooms.
type Sweeper struct {
	timers   TimerStore
	gateway  Emitter
	interval time.Duration
}

func NewSweeper(timers TimerStore, gateway Emitter, interval time.Duration) *Sweeper {
	return &Sweeper{timers: timers, gateway: gateway, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep runs one pass. Timers are processed independently: a failure
// to mark one leaves it in the expired query result, so the next pass
// retries it without blocking the rest.
func (s *Sweeper) Sweep(ctx context.Context) {
	expired, err := s.timers.ExpiredTimers(ctx)
	if err != nil {
		log.Printf("[sweeper] query failed: %v", err)
		return
	}

	for _, timer := range expired {
		if err := s.timers.MarkAsExpired(ctx, timer.ID); err != nil {
			log.Printf("[sweeper] mark expired failed for %s: %v", timer.ID, err)
			continue
		}
		s.gateway.EmitToRoom(timer.RoomID, EventTimerFinished, TimerFinishedData{
			TimerID:           timer.ID,
			Title:             timer.Title,
			RoomID:            timer.RoomID,
			CompletionMessage: timer.CompletionMessage,
		})
		log.Printf("[sweeper] timer %s expired and marked inactive", timer.ID)
	}
}
