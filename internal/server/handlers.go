package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"livetimer-echo/internal/auth"
	"livetimer-echo/internal/repository"
	"livetimer-echo/internal/services"
	"livetimer-echo/internal/ws"
)

// ApiResponse is the JSON envelope every endpoint answers with.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, ApiResponse{Success: true, Data: data})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, ApiResponse{Success: false, Message: message})
}

func failFrom(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fail(c, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrForbidden):
		return fail(c, http.StatusForbidden, "Forbidden")
	default:
		log.Printf("[http] internal error: %v", err)
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// userIDFrom reads the authenticated user id set by the jwt middleware.
func userIDFrom(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	id, _ := claims["user_id"].(string)
	return id
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.Health())
}

// --- auth ---

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

func toUserResponse(u repository.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

func (s *Server) registerHandler(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	user, err := s.userSvc.Register(c.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	token, err := auth.GenerateToken(s.cfg.JWTSecret, user.ID, user.Email)
	if err != nil {
		return failFrom(c, err)
	}
	s.setTokenCookie(c, token, 86400)
	return ok(c, map[string]any{"user": toUserResponse(user), "token": token})
}

func (s *Server) loginHandler(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	user, err := s.userSvc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return fail(c, http.StatusUnauthorized, "Invalid credentials")
		}
		return failFrom(c, err)
	}

	token, err := auth.GenerateToken(s.cfg.JWTSecret, user.ID, user.Email)
	if err != nil {
		return failFrom(c, err)
	}
	s.setTokenCookie(c, token, 86400)
	return ok(c, map[string]any{"user": toUserResponse(user), "token": token})
}

func (s *Server) logoutHandler(c echo.Context) error {
	s.setTokenCookie(c, "", -1)
	return ok(c, nil)
}

func (s *Server) meHandler(c echo.Context) error {
	user, err := s.userSvc.Get(c.Request().Context(), userIDFrom(c))
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, toUserResponse(user))
}

type profileRequest struct {
	Name string `json:"name"`
}

func (s *Server) updateProfileHandler(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.userSvc.UpdateProfile(c.Request().Context(), userIDFrom(c), req.Name); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return ok(c, nil)
}

func (s *Server) setTokenCookie(c echo.Context, token string, maxAge int) {
	cookie := &http.Cookie{
		Name:     "jwt_token",
		Value:    token,
		MaxAge:   maxAge,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	c.SetCookie(cookie)
}

// --- rooms ---

type roomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createRoomHandler(c echo.Context) error {
	var req roomRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	room, err := s.roomSvc.Create(c.Request().Context(), userIDFrom(c), req.Name, req.Description)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return ok(c, room)
}

func (s *Server) getAllRoomsHandler(c echo.Context) error {
	rooms, err := s.roomSvc.List(c.Request().Context(), userIDFrom(c))
	if err != nil {
		return failFrom(c, err)
	}
	if rooms == nil {
		rooms = []repository.Room{}
	}
	return ok(c, rooms)
}

func (s *Server) getRoomHandler(c echo.Context) error {
	room, err := s.roomSvc.FindByIDWithTimers(c.Request().Context(), c.Param("roomId"))
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, room)
}

func (s *Server) getRoomByShareTokenHandler(c echo.Context) error {
	room, err := s.roomSvc.FindByShareTokenWithTimers(c.Request().Context(), c.Param("shareToken"))
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, room)
}

func (s *Server) updateRoomHandler(c echo.Context) error {
	var req roomRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	room, err := s.roomSvc.Update(c.Request().Context(), c.Param("roomId"), userIDFrom(c), req.Name, req.Description)
	if err != nil {
		return failFrom(c, err)
	}

	s.gateway.EmitToRoom(room.ID, ws.EventRoomSettingChanged, map[string]any{
		"roomId":      room.ID,
		"name":        room.Name,
		"description": room.Description,
	})
	return ok(c, room)
}

func (s *Server) deleteRoomHandler(c echo.Context) error {
	if err := s.roomSvc.Delete(c.Request().Context(), c.Param("roomId"), userIDFrom(c)); err != nil {
		return failFrom(c, err)
	}
	return ok(c, nil)
}

func (s *Server) getRoomConnectionsHandler(c echo.Context) error {
	return ok(c, s.gateway.RoomStats(c.Param("roomId")))
}

func (s *Server) getSocketStatsHandler(c echo.Context) error {
	stats := s.gateway.AllRoomStats()
	total := 0
	for _, st := range stats {
		total += st.ConnectedUsers
	}
	return ok(c, map[string]any{
		"rooms":            stats,
		"totalRooms":       len(stats),
		"totalConnections": total,
	})
}

func (s *Server) debugTestSocketHandler(c echo.Context) error {
	roomID := c.Param("roomId")
	s.gateway.EmitToRoom(roomID, ws.EventTestEvent, map[string]any{
		"message":   "Test broadcast from backend",
		"timestamp": time.Now().Format(time.RFC3339),
		"roomId":    roomID,
	})
	return ok(c, nil)
}

// --- timers ---

type timerRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Duration          int64  `json:"duration"`
	CompletionMessage string `json:"completionMessage"`
}

// requireRoomOwner loads a room and checks the caller owns it.
func (s *Server) requireRoomOwner(c echo.Context, roomID string) (repository.Room, error) {
	room, err := s.roomSvc.Get(c.Request().Context(), roomID)
	if err != nil {
		return repository.Room{}, err
	}
	if room.OwnerID != userIDFrom(c) {
		return repository.Room{}, services.ErrForbidden
	}
	return room, nil
}

func (s *Server) createTimerHandler(c echo.Context) error {
	var req timerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	room, err := s.requireRoomOwner(c, c.Param("roomId"))
	if err != nil {
		return failFrom(c, err)
	}

	timer, err := s.timerSvc.Create(c.Request().Context(), services.CreateTimerData{
		RoomID:            room.ID,
		Title:             req.Title,
		Description:       req.Description,
		DurationMS:        req.Duration,
		CompletionMessage: req.CompletionMessage,
	})
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	s.gateway.EmitToRoom(room.ID, ws.EventTimerCreated, timer)
	return ok(c, timer)
}

func (s *Server) getTimersHandler(c echo.Context) error {
	timers, err := s.timerSvc.ListByRoom(c.Request().Context(), c.Param("roomId"))
	if err != nil {
		return failFrom(c, err)
	}
	if timers == nil {
		timers = []repository.Timer{}
	}
	return ok(c, timers)
}

func (s *Server) updateTimerHandler(c echo.Context) error {
	var req timerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	timer, err := s.timerSvc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failFrom(c, err)
	}
	if _, err := s.requireRoomOwner(c, timer.RoomID); err != nil {
		return failFrom(c, err)
	}

	updated, err := s.timerSvc.Update(c.Request().Context(), timer.ID, services.UpdateTimerData{
		Title:             req.Title,
		Description:       req.Description,
		DurationMS:        req.Duration,
		CompletionMessage: req.CompletionMessage,
	})
	if err != nil {
		return failFrom(c, err)
	}

	s.gateway.EmitToRoom(updated.RoomID, ws.EventTimerUpdate, updated)
	return ok(c, updated)
}

func (s *Server) deleteTimerHandler(c echo.Context) error {
	timer, err := s.timerSvc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failFrom(c, err)
	}
	if _, err := s.requireRoomOwner(c, timer.RoomID); err != nil {
		return failFrom(c, err)
	}
	if err := s.timerSvc.Delete(c.Request().Context(), timer.ID); err != nil {
		return failFrom(c, err)
	}

	s.gateway.EmitToRoom(timer.RoomID, ws.EventTimerDeleted, map[string]string{"timerId": timer.ID})
	return ok(c, nil)
}

// timerActionHandler maps start/pause/reset to a state transition plus
// the matching broadcast.
func (s *Server) timerActionHandler(event string) echo.HandlerFunc {
	action := map[string]services.TimerAction{
		ws.EventTimerStarted: services.ActionStart,
		ws.EventTimerPaused:  services.ActionPause,
		ws.EventTimerStopped: services.ActionReset,
	}[event]

	return func(c echo.Context) error {
		timer, err := s.timerSvc.Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			return failFrom(c, err)
		}
		if _, err := s.requireRoomOwner(c, timer.RoomID); err != nil {
			return failFrom(c, err)
		}

		updated, err := s.timerSvc.UpdateState(c.Request().Context(), timer.ID, action)
		if err != nil {
			return failFrom(c, err)
		}

		remaining := int64(0)
		if updated.IsActive && updated.EndTimestamp != nil {
			remaining = int64(time.Until(*updated.EndTimestamp).Seconds())
		}
		s.gateway.EmitToRoom(updated.RoomID, event, map[string]any{
			"timerId":       updated.ID,
			"roomId":        updated.RoomID,
			"isActive":      updated.IsActive,
			"endTimestamp":  updated.EndTimestamp,
			"remainingTime": remaining,
		})
		s.gateway.EmitToRoom(updated.RoomID, ws.EventTimerUpdate, updated)
		return ok(c, updated)
	}
}

type reorderRequest struct {
	TimerIDs []string `json:"timerIds"`
}

func (s *Server) reorderTimersHandler(c echo.Context) error {
	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	room, err := s.requireRoomOwner(c, c.Param("roomId"))
	if err != nil {
		return failFrom(c, err)
	}
	if err := s.timerSvc.Reorder(c.Request().Context(), room.ID, req.TimerIDs); err != nil {
		return failFrom(c, err)
	}

	timers, err := s.timerSvc.ListByRoom(c.Request().Context(), room.ID)
	if err != nil {
		return failFrom(c, err)
	}
	s.gateway.EmitToRoom(room.ID, ws.EventTimerUpdate, map[string]any{
		"roomId": room.ID,
		"timers": timers,
	})
	return ok(c, timers)
}

// --- live message ---

type liveMessageRequest struct {
	Message string `json:"message"`
}

func (s *Server) updateLiveMessageHandler(c echo.Context) error {
	var req liveMessageRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	return s.setLiveMessage(c, req.Message)
}

func (s *Server) clearLiveMessageHandler(c echo.Context) error {
	return s.setLiveMessage(c, "")
}

func (s *Server) setLiveMessage(c echo.Context, message string) error {
	roomID := c.Param("roomId")
	if err := s.roomSvc.SetLiveMessage(c.Request().Context(), roomID, userIDFrom(c), message); err != nil {
		return failFrom(c, err)
	}
	s.gateway.EmitToRoom(roomID, ws.EventLiveMessageUpdated, map[string]any{
		"roomId":    roomID,
		"message":   message,
		"updatedAt": time.Now().Format(time.RFC3339),
	})
	return ok(c, map[string]string{"message": message})
}

func (s *Server) getLiveMessageHandler(c echo.Context) error {
	room, err := s.roomSvc.Get(c.Request().Context(), c.Param("roomId"))
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, map[string]string{"message": room.LiveMessage})
}
