// Package faketelnet provides scripted Conn and Dialer implementations for
// testing session logic without a network.
package faketelnet

import (
	"strings"
	"sync"
	"time"

	"github.com/cliconsole/telnet-console-mcp/internal/ports"
)

// chunk is one scripted read: data (or an error) that becomes available
// delay after the previous chunk was consumed.
type chunk struct {
	delay time.Duration
	data  []byte
	err   error
}

// Conn is a scripted console connection. Reads consume enqueued chunks;
// writes are recorded and may trigger a Handler that enqueues a response,
// which lets a test script a whole device conversation. Waiting time is
// accounted through the clock, so tests driven by a fake clock run
// instantly.
type Conn struct {
	// Handler, if set, is called with each written line (terminator
	// stripped) and its non-empty return value is enqueued as a response.
	Handler func(line string) string

	clock ports.Clock

	mu      sync.Mutex
	chunks  []chunk
	writes  []string
	flushes int
	closed  bool
}

// NewConn creates a scripted connection. clock accounts for read waits.
func NewConn(clock ports.Clock) *Conn {
	return &Conn{clock: clock}
}

// Enqueue schedules data to become readable delay after the previous chunk
// is consumed.
func (c *Conn) Enqueue(delay time.Duration, data string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, chunk{delay: delay, data: []byte(data)})
}

// EnqueueErr schedules a read error.
func (c *Conn) EnqueueErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, chunk{err: err})
}

// Write records p and runs the Handler on each completed line.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.writes = append(c.writes, string(p))
	handler := c.Handler
	c.mu.Unlock()

	if handler != nil {
		line := strings.TrimRight(string(p), "\r\n")
		if resp := handler(line); resp != "" {
			c.Enqueue(0, resp)
		}
	}
	return len(p), nil
}

// Flush counts flushes.
func (c *Conn) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
	return nil
}

// ReadWithTimeout pops scripted data, honoring chunk delays against the
// timeout the way a real socket read deadline would.
func (c *Conn) ReadWithTimeout(p []byte, timeout time.Duration) (int, error) {
	c.mu.Lock()

	if len(c.chunks) == 0 {
		c.mu.Unlock()
		c.clock.Sleep(timeout)
		return 0, nil
	}

	head := &c.chunks[0]
	if head.delay > timeout {
		head.delay -= timeout
		c.mu.Unlock()
		c.clock.Sleep(timeout)
		return 0, nil
	}

	wait := head.delay
	head.delay = 0

	if head.err != nil {
		err := head.err
		c.chunks = c.chunks[1:]
		c.mu.Unlock()
		c.clock.Sleep(wait)
		return 0, err
	}

	n := copy(p, head.data)
	if n == len(head.data) {
		c.chunks = c.chunks[1:]
	} else {
		head.data = head.data[n:]
	}
	c.mu.Unlock()

	c.clock.Sleep(wait)
	return n, nil
}

// Close marks the connection closed.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Writes returns everything written so far.
func (c *Conn) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

// WrittenLines returns the written lines with terminators stripped.
func (c *Conn) WrittenLines() []string {
	lines := c.Writes()
	for i, w := range lines {
		lines[i] = strings.TrimRight(w, "\r\n")
	}
	return lines
}

// Flushes returns how many times Flush was called.
func (c *Conn) Flushes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushes
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

var _ ports.Conn = (*Conn)(nil)
