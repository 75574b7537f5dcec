// Package ports defines interfaces for external dependencies (Ports and Adapters pattern).
package ports

import "time"

// Conn is an open, negotiated byte-stream connection to a console device.
// Option negotiation, terminal type, and framing quirks are handled below
// this interface; callers see a plain read/write stream.
type Conn interface {
	// Write buffers p for transmission.
	Write(p []byte) (n int, err error)

	// Flush pushes all buffered writes onto the wire.
	Flush() error

	// ReadWithTimeout reads up to len(p) bytes, waiting at most timeout for
	// data to arrive. A timeout is not an error: it returns n == 0, err == nil.
	ReadWithTimeout(p []byte, timeout time.Duration) (n int, err error)

	// Close releases the connection. Safe to call once.
	Close() error
}

// Dialer opens console connections.
type Dialer interface {
	// DialTimeout connects to host:port, failing if the connection cannot be
	// established within timeout.
	DialTimeout(host string, port int, timeout time.Duration) (Conn, error)
}
