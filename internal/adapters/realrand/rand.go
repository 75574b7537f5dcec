// Package realrand provides a Random implementation backed by crypto/rand.
package realrand

import (
	"crypto/rand"

	"github.com/cliconsole/telnet-console-mcp/internal/ports"
)

// Random is a cryptographically secure random source.
type Random struct{}

// New creates a real random source.
func New() *Random {
	return &Random{}
}

// Read fills b with random bytes.
func (r *Random) Read(b []byte) (int, error) {
	return rand.Read(b)
}

var _ ports.Random = (*Random)(nil)
