// Package repository is the query layer over the sqlite database.
package repository

import (
	"context"
	"database/sql"
	"time"
)

type User struct {
	ID            string
	Email         string
	Name          string
	Password      string
	Role          string
	EmailVerified bool
	Banned        bool
	BanExpires    sql.NullTime
	CreatedAt     time.Time
}

type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ShareToken  string    `json:"shareToken"`
	OwnerID     string    `json:"ownerId"`
	LiveMessage string    `json:"liveMessage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Timer struct {
	ID                string     `json:"id"`
	RoomID            string     `json:"roomId"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	DurationMS        int64      `json:"duration"`
	StartTimestamp    *time.Time `json:"startTimestamp"`
	EndTimestamp      *time.Time `json:"endTimestamp"`
	IsActive          bool       `json:"isActive"`
	CompletionMessage string     `json:"completionMessage"`
	SortOrder         int64      `json:"sortOrder"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type RoomWithTimers struct {
	Room
	Timers []Timer `json:"timers"`
}

// DBTX lets the same queries run against *sql.DB or *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}
