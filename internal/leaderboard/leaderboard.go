// Package leaderboard keeps the ordered list of scores recorded in one session.
package leaderboard

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

// DisplayLimit is how many rows the leaderboard view shows
const DisplayLimit = 10

// Standing is one displayed leaderboard row
type Standing struct {
	Rank         int     `json:"rank"`
	Username     string  `json:"username"`
	Score        float64 `json:"score"`
	ScoreDisplay string  `json:"score_display"`
}

// Board holds every entry recorded during a session, sorted ascending by score
// (lower symmetry score ranks higher). Entries are never removed or merged.
type Board struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
	now     func() time.Time
}

// New creates an empty board
func New() *Board {
	return &Board{now: time.Now}
}

// Record appends an entry and keeps the board sorted. Equal scores keep their
// insertion order. It returns the 1-based rank of the new entry.
func (b *Board) Record(username string, score float64) (int, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, domain.ErrMissingUsername
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entry := domain.LeaderboardEntry{
		Username:   username,
		Score:      score,
		RecordedAt: b.now(),
	}
	b.entries = append(b.entries, entry)
	slices.SortStableFunc(b.entries, func(x, y domain.LeaderboardEntry) int {
		switch {
		case x.Score < y.Score:
			return -1
		case x.Score > y.Score:
			return 1
		default:
			return 0
		}
	})

	// the new entry is the last one among its equal scores
	rank := 0
	for i, e := range b.entries {
		if e.Score <= score {
			rank = i + 1
		}
	}
	return rank, nil
}

// Entries returns a copy of all entries in rank order
func (b *Board) Entries() []domain.LeaderboardEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Clone(b.entries)
}

// Top returns at most n entries from the head of the board
func (b *Board) Top(n int) []domain.LeaderboardEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	return slices.Clone(b.entries[:min(n, len(b.entries))])
}

// Len returns the number of recorded entries
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Standings renders the displayed rows: the top DisplayLimit entries with
// their rank and the score at two decimals.
func (b *Board) Standings() []Standing {
	return lo.Map(b.Top(DisplayLimit), func(e domain.LeaderboardEntry, i int) Standing {
		return Standing{
			Rank:         i + 1,
			Username:     e.Username,
			Score:        e.Score,
			ScoreDisplay: fmt.Sprintf("%.2f", e.Score),
		}
	})
}

// String formats a row the way the leaderboard tab shows it
func (s Standing) String() string {
	return fmt.Sprintf("#%d %s %s", s.Rank, s.Username, s.ScoreDisplay)
}
