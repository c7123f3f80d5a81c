// Package frame hands the most recent camera frame from the live loop to the
// on-demand analysis path.
package frame

import (
	"image"
	"sync"
	"time"
)

// Frame is an immutable decoded camera frame. Once stored in a Cell its image
// must not be written to.
type Frame struct {
	Seq        uint64
	Image      image.Image
	CapturedAt time.Time
}

// Cell holds at most one frame. The writer prepares a complete Frame outside
// the lock and only swaps the pointer under it, so a reader always sees either
// the previous or the new frame in full.
type Cell struct {
	mu    sync.Mutex
	frame *Frame
	seq   uint64
}

// Store publishes img as the latest frame and returns it
func (c *Cell) Store(img image.Image) *Frame {
	f := &Frame{Image: img, CapturedAt: time.Now()}

	c.mu.Lock()
	c.seq++
	f.Seq = c.seq
	c.frame = f
	c.mu.Unlock()

	return f
}

// Load returns the latest frame, or false when none has been stored yet
func (c *Cell) Load() (*Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.frame, c.frame != nil
}

// Clear drops the stored frame, e.g. when the camera stops
func (c *Cell) Clear() {
	c.mu.Lock()
	c.frame = nil
	c.mu.Unlock()
}
