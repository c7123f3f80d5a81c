package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

func TestSession_New(t *testing.T) {
	now := time.Now()
	s := New(now)

	assert.Equal(t, TabLeaderboard, s.ActiveTab())
	assert.Equal(t, now, s.LastSeen())
	assert.NotNil(t, s.Frames)
	assert.NotNil(t, s.Board)

	_, ok := s.Result()
	assert.False(t, ok)
}

func TestSession_ResultTabFlow(t *testing.T) {
	s := New(time.Now())

	_, ok := s.ViewResult()
	assert.False(t, ok)
	assert.Equal(t, TabLeaderboard, s.ActiveTab())

	first := &domain.AnalysisResult{FaceFound: true, SymmetryScore: 1}
	s.SetResult(first)
	assert.Equal(t, TabAnalysis, s.ActiveTab())

	got, ok := s.ViewResult()
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, TabLeaderboard, s.ActiveTab())

	// single slot: a new result replaces the old one
	second := &domain.AnalysisResult{FaceFound: true, SymmetryScore: 2}
	s.SetResult(second)
	got, _ = s.Result()
	assert.Same(t, second, got)
}

func TestSession_ReplaceResultKeepsTab(t *testing.T) {
	s := New(time.Now())
	face := &domain.AnalysisResult{FaceFound: true}
	noFace := &domain.AnalysisResult{FaceFound: false}

	s.ReplaceResult(noFace)
	assert.Equal(t, TabLeaderboard, s.ActiveTab())
	got, ok := s.Result()
	require.True(t, ok)
	assert.Same(t, noFace, got)

	s.SetResult(face)
	s.ReplaceResult(noFace)
	assert.Equal(t, TabAnalysis, s.ActiveTab())
	got, ok = s.Result()
	require.True(t, ok)
	assert.Same(t, noFace, got)
}

func TestSession_Expiry(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New(start)
	assert.Equal(t, start.Add(time.Minute), s.ExpiresAt(time.Minute))

	s.Touch(start.Add(30 * time.Second))
	assert.Equal(t, start.Add(90*time.Second), s.ExpiresAt(time.Minute))
}
