package ws

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingSender captures everything fanned out to one connection.
type recordingSender struct {
	mu   sync.Mutex
	msgs []Envelope
	full bool
}

func (s *recordingSender) Send(msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		panic(err)
	}
	s.msgs = append(s.msgs, env)
	return true
}

// SendEvent lets a recordingSender stand in for a session's own
// connection as well.
func (s *recordingSender) SendEvent(event string, data any) {
	var raw json.RawMessage
	if data != nil {
		raw = mustMarshal(data)
	}
	msg, _ := json.Marshal(Envelope{Event: event, Data: raw})
	s.Send(msg)
}

func (s *recordingSender) events(name string) []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Envelope
	for _, env := range s.msgs {
		if env.Event == name {
			out = append(out, env)
		}
	}
	return out
}

func (s *recordingSender) count(name string) int {
	return len(s.events(name))
}

func (s *recordingSender) last(t *testing.T, name string, dest any) {
	t.Helper()
	envs := s.events(name)
	require.NotEmpty(t, envs, "no %s event recorded", name)
	require.NoError(t, json.Unmarshal(envs[len(envs)-1].Data, dest))
}
