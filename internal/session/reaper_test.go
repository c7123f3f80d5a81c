package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaper_Sweep(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	stale := s.Create()

	clock.Advance(45 * time.Second)
	fresh := s.Create()

	var mu sync.Mutex
	var expired []uuid.UUID
	r := NewReaper(s, func(_ context.Context, id uuid.UUID) {
		mu.Lock()
		expired = append(expired, id)
		mu.Unlock()
	}, discardLogger(), time.Hour)

	clock.Advance(30 * time.Second)
	r.sweep(context.Background())

	assert.Equal(t, []uuid.UUID{stale.ID}, expired)
	assert.Equal(t, 1, s.Len())

	_, err := s.Get(fresh.ID)
	require.NoError(t, err)
}

func TestReaper_SweepWithoutCallback(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	s.Create()

	clock.Advance(2 * time.Minute)
	NewReaper(s, nil, discardLogger(), time.Hour).sweep(context.Background())

	assert.Equal(t, 0, s.Len())
}

func TestReaper_RunStopsOnCancel(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	r := NewReaper(s, nil, discardLogger(), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
