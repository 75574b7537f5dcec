package faketelnet

import (
	"fmt"
	"sync"
	"time"

	"github.com/cliconsole/telnet-console-mcp/internal/ports"
)

// Dialer hands out scripted connections.
type Dialer struct {
	// Err, if set, fails every dial.
	Err error

	// NewConn builds the connection for each dial.
	NewConn func() *Conn

	mu     sync.Mutex
	dialed []string
	conns  []*Conn
}

// NewDialer creates a dialer producing connections from newConn.
func NewDialer(newConn func() *Conn) *Dialer {
	return &Dialer{NewConn: newConn}
}

// DialTimeout records the endpoint and returns a scripted connection.
func (d *Dialer) DialTimeout(host string, port int, timeout time.Duration) (ports.Conn, error) {
	d.mu.Lock()
	d.dialed = append(d.dialed, fmt.Sprintf("%s:%d", host, port))
	d.mu.Unlock()

	if d.Err != nil {
		return nil, d.Err
	}

	c := d.NewConn()
	d.mu.Lock()
	d.conns = append(d.conns, c)
	d.mu.Unlock()
	return c, nil
}

// Dialed returns the endpoints dialed so far.
func (d *Dialer) Dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dialed...)
}

// Conns returns the connections handed out so far.
func (d *Dialer) Conns() []*Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Conn(nil), d.conns...)
}

var _ ports.Dialer = (*Dialer)(nil)
