// Package world builds the viewer's scene from configuration and keeps
// frame timing.
package world

import "time"

// FrameClock measures the time between frames.
type FrameClock struct {
	origin time.Time
	prev   time.Duration
}

// NewFrameClock starts a clock at origin.
func NewFrameClock(origin time.Time) *FrameClock {
	return &FrameClock{origin: origin}
}

// Tick returns the seconds elapsed since the previous Tick. The first Tick
// measures from the clock origin. Deltas are not clamped.
func (c *FrameClock) Tick(now time.Time) float32 {
	elapsed := now.Sub(c.origin)
	dt := elapsed - c.prev
	c.prev = elapsed
	return float32(dt.Seconds())
}

// FPSCounter counts frames over one-second windows.
type FPSCounter struct {
	frames int
	since  time.Time
}

// NewFPSCounter starts counting at now.
func NewFPSCounter(now time.Time) *FPSCounter {
	return &FPSCounter{since: now}
}

// Frame records one frame. Once a second has passed it returns the frame
// count of that window and true, and starts a new window.
func (f *FPSCounter) Frame(now time.Time) (int, bool) {
	f.frames++
	if now.Sub(f.since) < time.Second {
		return 0, false
	}
	n := f.frames
	f.frames = 0
	f.since = now
	return n, true
}
