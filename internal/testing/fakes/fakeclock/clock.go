// Package fakeclock provides a manually advanced Clock for testing.
package fakeclock

import (
	"sync"
	"time"

	"github.com/cliconsole/telnet-console-mcp/internal/ports"
)

// Clock is a fake clock whose time only moves when asked to.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// New creates a fake clock set to start.
func New(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the fake current time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the fake time by d and returns immediately.
func (c *Clock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves the fake time forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ ports.Clock = (*Clock)(nil)
