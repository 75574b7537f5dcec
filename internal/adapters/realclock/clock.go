// Package realclock provides a Clock implementation backed by the time package.
package realclock

import (
	"time"

	"github.com/cliconsole/telnet-console-mcp/internal/ports"
)

// Clock is the real system clock.
type Clock struct{}

// New creates a real clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (c *Clock) Now() time.Time {
	return time.Now()
}

// Sleep pauses for d.
func (c *Clock) Sleep(d time.Duration) {
	time.Sleep(d)
}

var _ ports.Clock = (*Clock)(nil)
