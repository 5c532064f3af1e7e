package server

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"livetimer-echo/internal/ws"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{s.cfg.CORSOrigin, "http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", s.healthHandler)

	// The socket endpoint does its own (optional) authentication so
	// anonymous viewers can connect with just a share token.
	wsDeps := ws.Deps{
		Cfg:      s.cfg,
		Verifier: s.verifier,
		Rooms:    s.roomSvc,
		Registry: s.registry,
		Presence: s.presence,
		Gateway:  s.gateway,
	}
	e.GET("/ws", func(c echo.Context) error {
		return ws.ServeWS(wsDeps, c)
	})

	{
		a := e.Group("/auth")
		a.POST("/register", s.registerHandler)
		a.POST("/login", s.loginHandler)
		a.POST("/logout", s.logoutHandler)

		me := a.Group("")
		me.Use(s.jwtMiddleware())
		me.GET("/me", s.meHandler)
		me.PUT("/profile", s.updateProfileHandler)
	}

	api := e.Group("/api")

	// Public: anonymous viewers resolve rooms by share token and read
	// timers and presence stats without credentials.
	api.GET("/rooms/share/:shareToken", s.getRoomByShareTokenHandler)
	api.GET("/rooms/:roomId", s.getRoomHandler)
	api.GET("/rooms/:roomId/connections", s.getRoomConnectionsHandler)
	api.GET("/rooms/:roomId/timers", s.getTimersHandler)
	api.GET("/rooms/:roomId/messages/live", s.getLiveMessageHandler)
	api.GET("/stats/socket", s.getSocketStatsHandler)
	api.POST("/debug/test-socket/:roomId", s.debugTestSocketHandler)

	// Owner-facing mutations.
	authed := e.Group("/api")
	authed.Use(s.jwtMiddleware())

	authed.POST("/rooms", s.createRoomHandler)
	authed.GET("/rooms", s.getAllRoomsHandler)
	authed.PUT("/rooms/:roomId", s.updateRoomHandler)
	authed.DELETE("/rooms/:roomId", s.deleteRoomHandler)

	authed.POST("/rooms/:roomId/timers", s.createTimerHandler)
	authed.POST("/rooms/:roomId/timers/reorder", s.reorderTimersHandler)
	authed.PUT("/timers/:id", s.updateTimerHandler)
	authed.DELETE("/timers/:id", s.deleteTimerHandler)
	authed.POST("/timers/:id/start", s.timerActionHandler(ws.EventTimerStarted))
	authed.POST("/timers/:id/pause", s.timerActionHandler(ws.EventTimerPaused))
	authed.POST("/timers/:id/reset", s.timerActionHandler(ws.EventTimerStopped))

	authed.PUT("/rooms/:roomId/messages/live", s.updateLiveMessageHandler)
	authed.DELETE("/rooms/:roomId/messages/live", s.clearLiveMessageHandler)

	return e
}

func (s *Server) jwtMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ,cookie:jwt_token",
		SigningKey:  []byte(s.cfg.JWTSecret),
	})
}
