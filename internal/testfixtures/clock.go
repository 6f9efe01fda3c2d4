package testfixtures

import (
	"sync"
	"time"
)

// Clock is a controllable time source shared by a guard, a dashboard, and
// the token minter in one test.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start, or to ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current instant tracked by the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection. A nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// AdvanceTo moves the clock to the next occurrence of day at hour:minute in
// the clock's current location, staying put if that is now.
func (c *Clock) AdvanceTo(day time.Weekday, hour, minute int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	offset := (int(day) - int(now.Weekday()) + 7) % 7
	target = target.AddDate(0, 0, offset)
	if target.Before(now) {
		target = target.AddDate(0, 0, 7)
	}
	c.current = target
	return target
}
