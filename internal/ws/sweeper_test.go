package ws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livetimer-echo/internal/repository"
)

type fakeTimerStore struct {
	expired  []repository.Timer
	queryErr error
	markErr  map[string]error
	marked   []string
}

func (s *fakeTimerStore) ExpiredTimers(context.Context) ([]repository.Timer, error) {
	return s.expired, s.queryErr
}

func (s *fakeTimerStore) MarkAsExpired(_ context.Context, id string) error {
	if err := s.markErr[id]; err != nil {
		return err
	}
	s.marked = append(s.marked, id)
	return nil
}

type recordingEmitter struct {
	calls []struct {
		roomID string
		event  string
		data   any
	}
}

func (e *recordingEmitter) EmitToRoom(roomID, event string, data any) {
	e.calls = append(e.calls, struct {
		roomID string
		event  string
		data   any
	}{roomID, event, data})
}

func TestSweeper_MarksAndAnnouncesExpiredTimers(t *testing.T) {
	store := &fakeTimerStore{
		expired: []repository.Timer{
			{ID: "t1", RoomID: "r1", Title: "Break", CompletionMessage: "Back to work"},
			{ID: "t2", RoomID: "r2", Title: "Q&A"},
		},
	}
	emitter := &recordingEmitter{}

	NewSweeper(store, emitter, time.Second).Sweep(context.Background())

	assert.Equal(t, []string{"t1", "t2"}, store.marked)
	require.Len(t, emitter.calls, 2)

	assert.Equal(t, "r1", emitter.calls[0].roomID)
	assert.Equal(t, EventTimerFinished, emitter.calls[0].event)
	data, ok := emitter.calls[0].data.(TimerFinishedData)
	require.True(t, ok)
	assert.Equal(t, TimerFinishedData{
		TimerID:           "t1",
		Title:             "Break",
		RoomID:            "r1",
		CompletionMessage: "Back to work",
	}, data)
}

func TestSweeper_NoExpiredTimersEmitsNothing(t *testing.T) {
	emitter := &recordingEmitter{}

	NewSweeper(&fakeTimerStore{}, emitter, time.Second).Sweep(context.Background())

	assert.Empty(t, emitter.calls)
}

func TestSweeper_QueryErrorSkipsPass(t *testing.T) {
	store := &fakeTimerStore{
		expired:  []repository.Timer{{ID: "t1", RoomID: "r1"}},
		queryErr: errors.New("db locked"),
	}
	emitter := &recordingEmitter{}

	NewSweeper(store, emitter, time.Second).Sweep(context.Background())

	assert.Empty(t, store.marked)
	assert.Empty(t, emitter.calls)
}

func TestSweeper_MarkFailureDoesNotBlockOthers(t *testing.T) {
	store := &fakeTimerStore{
		expired: []repository.Timer{
			{ID: "t1", RoomID: "r1"},
			{ID: "t2", RoomID: "r2"},
		},
		markErr: map[string]error{"t1": errors.New("db locked")},
	}
	emitter := &recordingEmitter{}

	NewSweeper(store, emitter, time.Second).Sweep(context.Background())

	// t1 stays active and is not announced; t2 proceeds normally.
	assert.Equal(t, []string{"t2"}, store.marked)
	require.Len(t, emitter.calls, 1)
	assert.Equal(t, "r2", emitter.calls[0].roomID)
}
