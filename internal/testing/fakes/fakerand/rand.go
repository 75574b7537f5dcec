// Package fakerand provides a predictable Random implementation for testing.
package fakerand

import (
	"sync"

	"github.com/cliconsole/telnet-console-mcp/internal/ports"
)

// Random is a fake random generator that produces predictable output.
type Random struct {
	mu       sync.Mutex
	sequence []byte
	offset   int
}

// NewSequential creates a fake random that returns 0, 1, 2, ..., 255, 0, ...
func NewSequential() *Random {
	seq := make([]byte, 256)
	for i := range seq {
		seq[i] = byte(i)
	}
	return &Random{sequence: seq}
}

// Read fills b with predictable bytes from the sequence.
func (r *Random) Read(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range b {
		b[i] = r.sequence[r.offset%len(r.sequence)]
		r.offset++
	}
	return len(b), nil
}

var _ ports.Random = (*Random)(nil)
