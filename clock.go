package osge

import (
	"time"

	"github.com/loov/hrtime"
)

// RenderClock measures time for the frame loop. The first Tick starts the clock.
type RenderClock struct {
	now     func() time.Duration
	started bool
	start   time.Duration
	last    time.Duration
}

// NewRenderClock returns a clock reading the high resolution timer
func NewRenderClock() *RenderClock {
	return &RenderClock{now: hrtime.Now}
}

// Tick returns the time since the first tick and since the previous one
func (c *RenderClock) Tick() (elapsed, delta time.Duration) {
	t := c.now()
	if !c.started {
		c.started = true
		c.start = t
		c.last = t
	}
	elapsed = t - c.start
	delta = t - c.last
	c.last = t
	return elapsed, delta
}
