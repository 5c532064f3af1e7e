// Package database manages the sqlite connection and schema lifecycle.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Service interface {
	Health() map[string]string
	InitSchema() error
	GetDB() *sql.DB
	Close() error
}

type service struct {
	db *sql.DB
}

func New(dburl string) Service {
	db, err := sql.Open("sqlite3", dburl+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		// Opening sqlite only fails on a malformed DSN, not a missing file.
		log.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	return &service{db: db}
}

func (s *service) InitSchema() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *service) Health() map[string]string {
	stats := make(map[string]string)

	start := time.Now()
	if err := s.db.Ping(); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	stats["status"] = "up"
	stats["latency"] = time.Since(start).String()
	stats["open_connections"] = fmt.Sprintf("%d", s.db.Stats().OpenConnections)
	return stats
}

func (s *service) GetDB() *sql.DB {
	return s.db
}

func (s *service) Close() error {
	return s.db.Close()
}
