package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAnalysisCompleted  EventType = "analysis.completed"
	EventLeaderboardUpdated EventType = "leaderboard.updated"
	EventSessionEnded       EventType = "session.ended"
)

type Event struct {
	SessionID uuid.UUID `json:"-"`
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`

	// disconnect the session's clients once the event is delivered
	closeAfter bool
}
