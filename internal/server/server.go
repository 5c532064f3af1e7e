package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"livetimer-echo/internal/auth"
	"livetimer-echo/internal/config"
	"livetimer-echo/internal/database"
	"livetimer-echo/internal/repository"
	"livetimer-echo/internal/services"
	"livetimer-echo/internal/ws"
)

type Server struct {
	cfg config.Config

	db       database.Service
	userSvc  *services.UserService
	roomSvc  *services.RoomService
	timerSvc *services.TimerService
	verifier *auth.Verifier

	registry *ws.Registry
	presence *ws.Presence
	gateway  *ws.Gateway
}

func NewServer() *http.Server {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db := database.New(cfg.DBURL)
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Wire repository and services
	queries := repository.New(db.GetDB())
	userSvc := services.NewUserService(queries)
	roomSvc := services.NewRoomService(queries)
	timerSvc := services.NewTimerService(queries)
	verifier := auth.NewVerifier(cfg.JWTSecret, queries)

	// Realtime core: one registry/gateway pair per process, handed to
	// both the socket routes and the HTTP handlers.
	registry := ws.NewRegistry()
	gateway := ws.NewGateway(registry)
	presence := ws.NewPresence(registry, gateway)

	if cfg.RedisAddr != "" {
		backplane := ws.NewBackplane(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		gateway.SetBackplane(backplane)
		go backplane.Run(context.Background(), gateway)
	}

	sweeper := ws.NewSweeper(timerSvc, gateway,
		time.Duration(cfg.SweepIntervalMS)*time.Millisecond)
	go sweeper.Run(context.Background())

	NewServer := &Server{
		cfg:      cfg,
		db:       db,
		userSvc:  userSvc,
		roomSvc:  roomSvc,
		timerSvc: timerSvc,
		verifier: verifier,
		registry: registry,
		presence: presence,
		gateway:  gateway,
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
