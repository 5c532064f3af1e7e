package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	goredis "github.com/redis/go-redis/v9"
)

const backplaneChannel = "livetimer:room-events"

// Backplane mirrors room broadcasts across processes over redis
// pub/sub. Each process publishes origin-tagged envelopes and re-emits
// everyone else's to its own local connections; the local registry
// stays the only authority over local membership.
type Backplane struct {
	rdb    *goredis.Client
	origin string
}

type backplaneEnvelope struct {
	Origin string          `json:"origin"`
	RoomID string          `json:"roomId"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

func NewBackplane(addr, password string, db int) *Backplane {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      1,
		MinRetryBackoff: 25 * time.Millisecond,
		MaxRetryBackoff: 250 * time.Millisecond,
	})

	return &Backplane{
		rdb:    rdb,
		origin: ulid.Make().String(),
	}
}

func (b *Backplane) Publish(ctx context.Context, roomID, event string, data json.RawMessage) error {
	payload, err := json.Marshal(backplaneEnvelope{
		Origin: b.origin,
		RoomID: roomID,
		Event:  event,
		Data:   data,
	})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, backplaneChannel, payload).Err()
}

// Run subscribes and re-emits remote events locally until ctx ends.
func (b *Backplane) Run(ctx context.Context, gateway *Gateway) {
	sub := b.rdb.Subscribe(ctx, backplaneChannel)
	defer sub.Close()

	log.Printf("[backplane] subscribed to %s", backplaneChannel)
	for {
		select {
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var env backplaneEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("[backplane] bad payload: %v", err)
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			gateway.emitLocal(env.RoomID, env.Event, env.Data)
		case <-ctx.Done():
			return
		}
	}
}

func (b *Backplane) Close() error {
	return b.rdb.Close()
}
