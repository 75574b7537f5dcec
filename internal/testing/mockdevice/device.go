// Package mockdevice runs a TCP stub that behaves like a small network
// switch console: banner on connect, line-oriented commands, every response
// terminated by the device prompt.
package mockdevice

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
)

// Device is a listening stub console device.
type Device struct {
	hostname  string
	ln        net.Listener
	responses map[string]string
	quiet     bool
	startMode string // configuration sub-mode active at connect, e.g. "config-if"

	wg     sync.WaitGroup
	closed chan struct{}
}

// Option configures a Device.
type Option func(*Device)

// WithResponse makes the device answer command with output (the prompt is
// appended automatically).
func WithResponse(command, output string) Option {
	return func(d *Device) { d.responses[command] = output }
}

// WithQuiet makes the device accept connections but never write anything.
func WithQuiet() Option {
	return func(d *Device) { d.quiet = true }
}

// WithStartMode makes the device present a configuration prompt such as
// "SW1(config-if)#" until it receives "end".
func WithStartMode(sub string) Option {
	return func(d *Device) { d.startMode = sub }
}

// Start listens on an ephemeral localhost port and serves connections until
// Close.
func Start(hostname string, opts ...Option) (*Device, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	d := &Device{
		hostname:  hostname,
		ln:        ln,
		responses: make(map[string]string),
		closed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.wg.Add(1)
	go d.acceptLoop()

	return d, nil
}

// Addr returns the host and port the device listens on.
func (d *Device) Addr() (string, int) {
	addr := d.ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

// Endpoint returns the host:port string.
func (d *Device) Endpoint() string {
	host, port := d.Addr()
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Close stops the listener and waits for connection handlers to finish.
func (d *Device) Close() {
	close(d.closed)
	d.ln.Close()
	d.wg.Wait()
}

func (d *Device) acceptLoop() {
	defer d.wg.Done()
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			select {
			case <-d.closed:
				return
			default:
				continue
			}
		}
		d.wg.Add(1)
		go d.serve(conn)
	}
}

func (d *Device) serve(conn net.Conn) {
	defer d.wg.Done()
	defer conn.Close()

	if d.quiet {
		// Swallow everything, answer nothing.
		buf := make([]byte, 1024)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}

	mode := d.startMode

	prompt := func() string {
		if mode != "" {
			return fmt.Sprintf("%s(%s)#", d.hostname, mode)
		}
		return d.hostname + "#"
	}

	fmt.Fprintf(conn, "\r\nPress RETURN to get started.\r\n")

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))

		var body string
		switch {
		case line == "":
			// Bare return: fresh prompt only.
		case line == "?":
			body = "Exec commands:\r\n  show        Show running system information\r\n  ping        Send echo messages\r\n"
		case line == "end":
			mode = ""
		case line == "terminal length 0":
			// Pagination off: acknowledged silently.
		default:
			if resp, ok := d.responses[line]; ok {
				body = strings.ReplaceAll(resp, "\n", "\r\n")
				if !strings.HasSuffix(body, "\r\n") {
					body += "\r\n"
				}
			} else {
				body = "% Invalid input detected at '^' marker.\r\n"
			}
		}

		if _, err := fmt.Fprintf(conn, "\r\n%s%s", body, prompt()); err != nil {
			return
		}
	}
}
