package leaderboard

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

func scores(entries []domain.LeaderboardEntry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.Score
	}
	return out
}

func TestBoard_Record(t *testing.T) {
	t.Run("sorted ascending", func(t *testing.T) {
		b := New()
		for _, s := range []float64{5, 1, 3} {
			_, err := b.Record("user", s)
			require.NoError(t, err)
		}
		assert.Equal(t, []float64{1, 3, 5}, scores(b.Entries()))
	})

	t.Run("returns rank of new entry", func(t *testing.T) {
		b := New()
		rank, _ := b.Record("a", 2.0)
		assert.Equal(t, 1, rank)
		rank, _ = b.Record("b", 1.0)
		assert.Equal(t, 1, rank)
		rank, _ = b.Record("c", 3.0)
		assert.Equal(t, 3, rank)
		rank, _ = b.Record("d", 2.0)
		assert.Equal(t, 3, rank)
	})

	t.Run("equal scores keep insertion order", func(t *testing.T) {
		b := New()
		_, _ = b.Record("first", 1.5)
		_, _ = b.Record("zero", 0.5)
		_, _ = b.Record("second", 1.5)

		entries := b.Entries()
		assert.Equal(t, "zero", entries[0].Username)
		assert.Equal(t, "first", entries[1].Username)
		assert.Equal(t, "second", entries[2].Username)
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		b := New()
		_, _ = b.Record("same", 1)
		_, _ = b.Record("same", 1)
		assert.Equal(t, 2, b.Len())
	})

	t.Run("blank username rejected", func(t *testing.T) {
		b := New()
		for _, name := range []string{"", "   ", "\t"} {
			_, err := b.Record(name, 1)
			assert.ErrorIs(t, err, domain.ErrMissingUsername)
		}
		assert.Zero(t, b.Len())
	})

	t.Run("username trimmed", func(t *testing.T) {
		b := New()
		_, _ = b.Record("  budi ", 1)
		assert.Equal(t, "budi", b.Entries()[0].Username)
	})
}

func TestBoard_Top(t *testing.T) {
	b := New()
	for i := 12; i >= 1; i-- {
		_, err := b.Record(fmt.Sprintf("user%d", i), float64(i))
		require.NoError(t, err)
	}

	top := b.Top(DisplayLimit)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, scores(top))
	assert.Equal(t, 12, b.Len())

	assert.Len(t, b.Top(100), 12)
	assert.Empty(t, b.Top(-1))
	assert.Empty(t, New().Top(DisplayLimit))
}

func TestBoard_Standings(t *testing.T) {
	b := New()
	_, _ = b.Record("andi", 2.346)
	_, _ = b.Record("sari", 0.5)

	rows := b.Standings()
	require.Len(t, rows, 2)
	assert.Equal(t, Standing{Rank: 1, Username: "sari", Score: 0.5, ScoreDisplay: "0.50"}, rows[0])
	assert.Equal(t, "#2 andi 2.35", rows[1].String())
}

func TestBoard_EntriesIsCopy(t *testing.T) {
	b := New()
	_, _ = b.Record("a", 1)

	entries := b.Entries()
	entries[0].Score = 99
	assert.Equal(t, 1.0, b.Entries()[0].Score)
}

func TestBoard_Concurrent(t *testing.T) {
	b := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = b.Record("u", float64(i%7))
		}(i)
		go func() {
			defer wg.Done()
			_ = b.Standings()
		}()
	}
	wg.Wait()

	entries := b.Entries()
	assert.Len(t, entries, 50)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Score, entries[i].Score)
	}
}
