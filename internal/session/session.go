// Package session holds the state of one interactive analysis session.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/frame"
	"github.com/saturnino-fabrica-de-software/facescan/internal/leaderboard"
)

// Tab is the view the client should show
type Tab string

const (
	TabLeaderboard Tab = "leaderboard"
	TabAnalysis    Tab = "analysis"
)

// Session is the state of one user session: latest frame, last analysis
// result, leaderboard and the active tab.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	Frames *frame.Cell
	Board  *leaderboard.Board

	mu         sync.Mutex
	lastResult *domain.AnalysisResult
	activeTab  Tab
	lastSeen   time.Time
}

// New creates an empty session showing the leaderboard
func New(now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		Frames:    &frame.Cell{},
		Board:     leaderboard.New(),
		activeTab: TabLeaderboard,
		lastSeen:  now,
	}
}

// SetResult replaces the single result slot and switches to the analysis tab
func (s *Session) SetResult(r *domain.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastResult = r
	s.activeTab = TabAnalysis
}

// ReplaceResult overwrites the result slot without changing the active tab.
// Used for analyses that found no face.
func (s *Session) ReplaceResult(r *domain.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastResult = r
}

// Result returns the last analysis result, if any
func (s *Session) Result() (*domain.AnalysisResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastResult, s.lastResult != nil
}

// ViewResult returns the last result and marks it as seen, which sends the
// client back to the leaderboard tab on its next render.
func (s *Session) ViewResult() (*domain.AnalysisResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastResult == nil {
		return nil, false
	}
	s.activeTab = TabLeaderboard
	return s.lastResult, true
}

// ActiveTab returns the tab the client should display
func (s *Session) ActiveTab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTab
}

// Touch records activity at now
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns the time of the last activity
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// ExpiresAt returns when the session expires without further activity
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.LastSeen().Add(ttl)
}
