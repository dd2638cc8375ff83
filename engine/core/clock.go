package core

import "time"

/**
 * @brief Frame clock. Elapsed only moves on Update so every reader of a frame
 * sees the same time.
 */
type Clock struct {
	now       func() time.Time
	startTime time.Time
	running   bool
	elapsed   float64
	previous  float64
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// newClockAt creates a clock driven by now instead of the wall clock.
func newClockAt(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Update samples the time source. Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = c.now().Sub(c.startTime).Seconds()
	}
}

// Tick updates the clock and returns the seconds since the previous Tick, or since Start.
func (c *Clock) Tick() float64 {
	c.Update()
	delta := c.elapsed - c.previous
	c.previous = c.elapsed
	return delta
}

// Start resets elapsed time and starts counting.
func (c *Clock) Start() {
	c.startTime = c.now()
	c.running = true
	c.elapsed = 0
	c.previous = 0
}

// Stop freezes elapsed time without resetting it.
func (c *Clock) Stop() {
	c.running = false
}

// Elapsed returns the seconds between Start and the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
