package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

// Store keeps live sessions in memory. Nothing outlives the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewStore creates a store whose sessions expire after ttl of inactivity
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// TTL returns the inactivity timeout
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a new session
func (s *Store) Create() *Session {
	sess := New(s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Debug("session created", "session_id", sess.ID)
	return sess
}

// Get returns a live session and refreshes its activity time
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	now := s.now()
	if !ok || now.After(sess.ExpiresAt(s.ttl)) {
		return nil, domain.ErrSessionNotFound
	}

	sess.Touch(now)
	return sess, nil
}

// Delete ends a session. It reports whether the session existed.
func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	s.logger.Debug("session deleted", "session_id", id)
	return true
}

// Len returns the number of sessions held, expired or not
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns their IDs
func (s *Store) Sweep() []uuid.UUID {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []uuid.UUID
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt(s.ttl)) {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	return expired
}
