package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Conn is the transport a session writes to. *websocket.Conn satisfies it;
// tests use fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is one live client connection to the real-time layer. Created on
// connect, destroyed on disconnect; it owns the set of design rooms it has
// joined and has no persisted identity beyond the connection lifetime.
type Session struct {
	id      string
	conn    Conn
	limiter *rate.Limiter

	writeMu sync.Mutex

	mu     sync.Mutex
	joined map[string]struct{}
}

func New(conn Conn, messagesPerSecond float64, burst int) *Session {
	return &Session{
		id:      uuid.NewString(),
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), burst),
		joined:  make(map[string]struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// Write sends a text frame. Serialized: gorilla connections allow only one
// concurrent writer.
func (s *Session) Write(msg []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, msg)
}

func (s *Session) Close() error {
	return s.conn.Close()
}

// Allow reports whether the session is within its message rate budget.
func (s *Session) Allow() bool {
	return s.limiter.Allow()
}

func (s *Session) track(designID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined[designID] = struct{}{}
}

func (s *Session) untrack(designID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.joined, designID)
}

// Joined returns a snapshot of the rooms the session is a member of.
func (s *Session) Joined() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.joined))
	for id := range s.joined {
		ids = append(ids, id)
	}
	return ids
}

func (s *Session) clearJoined() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined = make(map[string]struct{})
}
