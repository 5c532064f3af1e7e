package repository

import (
	"context"
	"time"
)

const timerColumns = `id, room_id, title, description, duration_ms, start_timestamp, end_timestamp,
	is_active, completion_message, sort_order, created_at`

const createTimer = `
INSERT INTO timers (id, room_id, title, description, duration_ms, completion_message, sort_order)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + timerColumns

type CreateTimerParams struct {
	ID                string
	RoomID            string
	Title             string
	Description       string
	DurationMS        int64
	CompletionMessage string
	SortOrder         int64
}

func (q *Queries) CreateTimer(ctx context.Context, arg CreateTimerParams) (Timer, error) {
	row := q.db.QueryRowContext(ctx, createTimer,
		arg.ID, arg.RoomID, arg.Title, arg.Description, arg.DurationMS,
		arg.CompletionMessage, arg.SortOrder)
	return scanTimer(row)
}

const getTimer = `SELECT ` + timerColumns + ` FROM timers WHERE id = ?`

func (q *Queries) GetTimer(ctx context.Context, id string) (Timer, error) {
	return scanTimer(q.db.QueryRowContext(ctx, getTimer, id))
}

const getTimersByRoom = `
SELECT ` + timerColumns + ` FROM timers
WHERE room_id = ?
ORDER BY sort_order ASC, created_at ASC
`

func (q *Queries) GetTimersByRoom(ctx context.Context, roomID string) ([]Timer, error) {
	rows, err := q.db.QueryContext(ctx, getTimersByRoom, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timers []Timer
	for rows.Next() {
		t, err := scanTimer(rows)
		if err != nil {
			return nil, err
		}
		timers = append(timers, t)
	}
	return timers, rows.Err()
}

const updateTimer = `
UPDATE timers
SET title = ?, description = ?, duration_ms = ?, completion_message = ?
WHERE id = ?
RETURNING ` + timerColumns

type UpdateTimerParams struct {
	ID                string
	Title             string
	Description       string
	DurationMS        int64
	CompletionMessage string
}

func (q *Queries) UpdateTimer(ctx context.Context, arg UpdateTimerParams) (Timer, error) {
	row := q.db.QueryRowContext(ctx, updateTimer,
		arg.Title, arg.Description, arg.DurationMS, arg.CompletionMessage, arg.ID)
	return scanTimer(row)
}

const setTimerState = `
UPDATE timers
SET is_active = ?, start_timestamp = ?, end_timestamp = ?, duration_ms = ?
WHERE id = ?
RETURNING ` + timerColumns

type SetTimerStateParams struct {
	ID             string
	IsActive       bool
	StartTimestamp *time.Time
	EndTimestamp   *time.Time
	DurationMS     int64
}

func (q *Queries) SetTimerState(ctx context.Context, arg SetTimerStateParams) (Timer, error) {
	row := q.db.QueryRowContext(ctx, setTimerState,
		arg.IsActive, arg.StartTimestamp, arg.EndTimestamp, arg.DurationMS, arg.ID)
	return scanTimer(row)
}

const setTimerOrder = `UPDATE timers SET sort_order = ? WHERE id = ? AND room_id = ?`

func (q *Queries) SetTimerOrder(ctx context.Context, roomID, timerID string, order int64) error {
	_, err := q.db.ExecContext(ctx, setTimerOrder, order, timerID, roomID)
	return err
}

const deleteTimer = `DELETE FROM timers WHERE id = ?`

func (q *Queries) DeleteTimer(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteTimer, id)
	return err
}

const getExpiredTimers = `
SELECT ` + timerColumns + ` FROM timers
WHERE is_active = 1 AND end_timestamp IS NOT NULL AND end_timestamp < ?
`

func (q *Queries) GetExpiredTimers(ctx context.Context, now time.Time) ([]Timer, error) {
	rows, err := q.db.QueryContext(ctx, getExpiredTimers, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timers []Timer
	for rows.Next() {
		t, err := scanTimer(rows)
		if err != nil {
			return nil, err
		}
		timers = append(timers, t)
	}
	return timers, rows.Err()
}

const markTimerExpired = `UPDATE timers SET is_active = 0 WHERE id = ?`

func (q *Queries) MarkTimerExpired(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markTimerExpired, id)
	return err
}

func scanTimer(row rowScanner) (Timer, error) {
	var t Timer
	err := row.Scan(
		&t.ID,
		&t.RoomID,
		&t.Title,
		&t.Description,
		&t.DurationMS,
		&t.StartTimestamp,
		&t.EndTimestamp,
		&t.IsActive,
		&t.CompletionMessage,
		&t.SortOrder,
		&t.CreatedAt,
	)
	return t, err
}
