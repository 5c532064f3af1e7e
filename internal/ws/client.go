package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"livetimer-echo/internal/auth"
	"livetimer-echo/internal/config"
)

var writeTimeout = 30 * time.Second // per-write timeout to client

// Client owns one websocket connection: a buffered outbound channel
// drained by the write pump, and a read loop feeding the session.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn, bufSize int) *Client {
	return &Client{
		id:   ulid.Make().String(),
		conn: conn,
		send: make(chan []byte, bufSize),
	}
}

// Send queues a message without blocking; false means the buffer was
// full and the message was dropped.
func (c *Client) Send(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendEvent marshals and queues a single-recipient event.
func (c *Client) SendEvent(event string, data any) {
	var raw json.RawMessage
	if data != nil {
		raw = mustMarshal(data)
	}
	msg, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return
	}
	if !c.Send(msg) {
		log.Printf("[ws] dropped %s for slow connection %s", event, c.id)
	}
}

func (c *Client) writePump(ctx context.Context) {
	defer func() {
		_ = c.conn.CloseNow()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := writeWithTimeout(ctx, writeTimeout, c.conn, msg); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeWithTimeout(ctx context.Context, timeout time.Duration, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

// Deps bundles what a connection needs; the HTTP layer constructs one
// set at startup and passes it to the route registration.
type Deps struct {
	Cfg      config.Config
	Verifier *auth.Verifier
	Rooms    RoomStore
	Registry *Registry
	Presence *Presence
	Gateway  *Gateway
}

// ServeWS upgrades the request and runs the connection to completion.
// A missing token means an anonymous viewer; an invalid or banned one
// rejects the connection before any join can happen.
func ServeWS(deps Deps, c echo.Context) error {
	r := c.Request()

	token := r.URL.Query().Get("token")
	if token == "" {
		if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
			token = h[7:]
		}
	}

	var identity *auth.Identity
	if token != "" {
		var err error
		identity, err = deps.Verifier.Verify(r.Context(), token)
		if err != nil {
			log.Printf("[ws] authentication failed: %v", err)
			return echo.NewHTTPError(401, "Authentication failed")
		}
	}

	conn, err := websocket.Accept(c.Response().Writer, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return err
	}

	client := newClient(conn, deps.Cfg.SendBuffer)
	session := NewSession(client.id, identity, r.UserAgent(), c.RealIP(),
		deps.Rooms, deps.Registry, deps.Presence, deps.Gateway, client)

	deps.Gateway.Attach(client.id, client)
	log.Printf("[ws] client connected: %s", client.id)

	ctx, cancel := context.WithCancel(context.Background())
	go client.writePump(ctx)

	defer func() {
		cancel()
		session.Leave()
		deps.Gateway.Detach(client.id)
		_ = conn.CloseNow()
		log.Printf("[ws] client disconnected: %s", client.id)
	}()

	conn.SetReadLimit(int64(deps.Cfg.MaxMessageBytes))
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && status != -1 {
				log.Printf("[ws] read error on %s: %v", client.id, err)
			}
			return nil
		}
		session.HandleMessage(ctx, msg)
	}
}
