// Package sessionstore holds in-progress dial interactions for the HTTP
// surface. Sessions live in memory only and expire on idleness; committing
// the final window anywhere durable is the owning client's job.
package sessionstore

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter/v2"

	"github.com/fastwell-dev/fastdial/pkg/fastwindow"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Session is one user's dial interaction. The mutex serializes drag samples:
// even if a client posts from both handles at once, updates apply one at a
// time and the duration lock holds (last writer wins per field).
type Session struct {
	ID      string
	Window  *fastwindow.Window
	Created time.Time

	mu sync.Mutex
}

// Update runs fn with exclusive access to the session's window.
func (s *Session) Update(fn func(*fastwindow.Window)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.Window)
}

// Store is a TTL-bounded in-memory session table.
type Store struct {
	sessions *otter.Cache[string, *Session]
	logger   *slog.Logger
	ttl      time.Duration
}

// New creates a Store whose sessions expire after ttl of inactivity.
func New(ttl time.Duration, logger *slog.Logger) *Store {
	sessions := otter.Must(&otter.Options[string, *Session]{
		MaximumSize:      10_000,
		InitialCapacity:  256,
		ExpiryCalculator: otter.ExpiryAccessing[string, *Session](ttl),
	})
	return &Store{sessions: sessions, logger: logger, ttl: ttl}
}

// Create registers a new session around the given window and returns it.
func (s *Store) Create(w *fastwindow.Window) *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		Window:  w,
		Created: time.Now(),
	}
	s.sessions.Set(sess.ID, sess)
	s.logger.Debug("session created", "id", sess.ID)
	return sess
}

// Get looks up a live session by id.
func (s *Store) Get(id string) (*Session, error) {
	sess, found := s.sessions.GetIfPresent(id)
	if !found {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete drops a session. Deleting an unknown id is not an error.
func (s *Store) Delete(id string) {
	s.sessions.Invalidate(id)
	s.logger.Debug("session deleted", "id", id)
}

// Len reports the approximate number of live sessions.
func (s *Store) Len() int {
	return int(s.sessions.EstimatedSize())
}
