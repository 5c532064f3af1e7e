package repository

import (
	"context"
)

const roomColumns = `id, name, description, share_token, owner_id, live_message, created_at, updated_at`

const createRoom = `
INSERT INTO rooms (id, name, description, share_token, owner_id)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + roomColumns

type CreateRoomParams struct {
	ID          string
	Name        string
	Description string
	ShareToken  string
	OwnerID     string
}

func (q *Queries) CreateRoom(ctx context.Context, arg CreateRoomParams) (Room, error) {
	row := q.db.QueryRowContext(ctx, createRoom,
		arg.ID, arg.Name, arg.Description, arg.ShareToken, arg.OwnerID)
	return scanRoom(row)
}

const getRoom = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`

func (q *Queries) GetRoom(ctx context.Context, id string) (Room, error) {
	return scanRoom(q.db.QueryRowContext(ctx, getRoom, id))
}

const getRoomByShareToken = `SELECT ` + roomColumns + ` FROM rooms WHERE share_token = ?`

func (q *Queries) GetRoomByShareToken(ctx context.Context, shareToken string) (Room, error) {
	return scanRoom(q.db.QueryRowContext(ctx, getRoomByShareToken, shareToken))
}

const getRoomsByOwner = `
SELECT ` + roomColumns + ` FROM rooms WHERE owner_id = ? ORDER BY created_at DESC
`

func (q *Queries) GetRoomsByOwner(ctx context.Context, ownerID string) ([]Room, error) {
	rows, err := q.db.QueryContext(ctx, getRoomsByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

const updateRoom = `
UPDATE rooms
SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + roomColumns

type UpdateRoomParams struct {
	ID          string
	Name        string
	Description string
}

func (q *Queries) UpdateRoom(ctx context.Context, arg UpdateRoomParams) (Room, error) {
	row := q.db.QueryRowContext(ctx, updateRoom, arg.Name, arg.Description, arg.ID)
	return scanRoom(row)
}

const updateRoomLiveMessage = `
UPDATE rooms
SET live_message = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

func (q *Queries) UpdateRoomLiveMessage(ctx context.Context, id, message string) error {
	_, err := q.db.ExecContext(ctx, updateRoomLiveMessage, message, id)
	return err
}

const deleteRoom = `DELETE FROM rooms WHERE id = ?`

func (q *Queries) DeleteRoom(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteRoom, id)
	return err
}

func scanRoom(row rowScanner) (Room, error) {
	var r Room
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.ShareToken,
		&r.OwnerID,
		&r.LiveMessage,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
