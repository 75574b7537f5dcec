// Package realtelnet adapts the ziutek/telnet client to the ports.Conn interface.
package realtelnet

import (
	"bufio"
	"net"
	"strconv"
	"time"

	"github.com/ziutek/telnet"

	"github.com/cliconsole/telnet-console-mcp/internal/ports"
)

// Dialer opens Telnet connections to console devices.
type Dialer struct{}

// New creates a Telnet dialer.
func New() *Dialer {
	return &Dialer{}
}

// DialTimeout connects to host:port over Telnet, bounding the TCP connect by
// timeout. Unix write mode is enabled so "\n" leaves the wire as CRLF, which
// is what line-oriented console devices expect.
func (d *Dialer) DialTimeout(host string, port int, timeout time.Duration) (ports.Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	c, err := telnet.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	c.SetUnixWriteMode(true)
	return &conn{t: c, w: bufio.NewWriter(c)}, nil
}

// conn wraps a telnet.Conn with buffered writes and deadline-bounded reads.
type conn struct {
	t *telnet.Conn
	w *bufio.Writer
}

func (c *conn) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

func (c *conn) Flush() error {
	return c.w.Flush()
}

// ReadWithTimeout reads up to len(p) bytes. Deadline expiry is reported as an
// empty read, not an error; the poll loops upstream treat silence and data
// arrival as the two normal cases.
func (c *conn) ReadWithTimeout(p []byte, timeout time.Duration) (int, error) {
	if err := c.t.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := c.t.Read(p)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

func (c *conn) Close() error {
	return c.t.Close()
}

var _ ports.Dialer = (*Dialer)(nil)
