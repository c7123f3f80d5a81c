package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(ttl, discardLogger())
	s.now = clock.Now
	return s, clock
}

func TestStore_CreateGet(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	sess := s.Create()
	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = s.Get(uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_GetRefreshesActivity(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	sess := s.Create()

	clock.Advance(50 * time.Second)
	_, err := s.Get(sess.ID)
	require.NoError(t, err)

	clock.Advance(50 * time.Second)
	_, err = s.Get(sess.ID)
	assert.NoError(t, err)

	clock.Advance(61 * time.Second)
	_, err = s.Get(sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_Delete(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	sess := s.Create()

	assert.True(t, s.Delete(sess.ID))
	assert.False(t, s.Delete(sess.ID))

	_, err := s.Get(sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_Sweep(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	old := s.Create()

	clock.Advance(45 * time.Second)
	fresh := s.Create()

	clock.Advance(30 * time.Second)
	expired := s.Sweep()

	assert.Equal(t, []uuid.UUID{old.ID}, expired)
	assert.Equal(t, 1, s.Len())
	_, err := s.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestReaper_Run(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	sess := s.Create()
	clock.Advance(2 * time.Minute)

	expired := make(chan uuid.UUID, 1)
	r := NewReaper(s, func(_ context.Context, id uuid.UUID) {
		expired <- id
	}, discardLogger(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case id := <-expired:
		assert.Equal(t, sess.ID, id)
	case <-time.After(time.Second):
		t.Fatal("session was not reaped")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
	assert.Zero(t, s.Len())
}
