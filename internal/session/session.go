// Package session manages console sessions and the adaptive output-completion
// engine that decides, without any end-of-response marker, when a command's
// output is complete.
package session

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cliconsole/telnet-console-mcp/internal/ports"
	"github.com/cliconsole/telnet-console-mcp/internal/prompt"
)

// Connect-sequence write counts. Several bare returns clear "press RETURN"
// banners; several "?" queries surface the mode banner and warm up the
// transmission path ("?" is valid in every device mode and always answers).
const (
	wakeupWrites = 3
	warmupWrites = 5
)

// Session is one live console connection. It exclusively owns its transport
// handle; all operations on a session are serialized by its mutex, so two
// concurrent Exec calls cannot interleave reads and writes on the same
// stream.
type Session struct {
	ID        string
	Host      string
	Port      int
	CreatedAt time.Time

	conn      ports.Conn
	clock     ports.Clock
	detector  *prompt.Detector
	timing    Timing
	readBuf   int
	slowExtra []string

	mu     sync.Mutex
	closed bool
}

// Summary is the caller-facing view of a session.
type Summary struct {
	SessionID   string    `json:"sessionId"`
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// Summary returns the session's summary.
func (s *Session) Summary() Summary {
	return Summary{
		SessionID:   s.ID,
		Host:        s.Host,
		Port:        s.Port,
		ConnectedAt: s.CreatedAt,
	}
}

// initialize brings a freshly opened connection into a known baseline state:
// awake, out of any configuration mode, pagination disabled. Every step
// tolerates silence; device behavior here is too heterogeneous to treat a
// missing reply as an error.
func (s *Session) initialize() {
	for i := 0; i < wakeupWrites; i++ {
		s.writeLine("")
		s.clock.Sleep(s.timing.WakeupPace)
	}

	for i := 0; i < warmupWrites; i++ {
		s.writeLine("?")
		s.clock.Sleep(s.timing.WarmupPace)
	}

	banner := s.drain()

	// Never hand the session back while it sits in a configuration mode the
	// caller did not ask for. "end" returns to the top level from any depth.
	if strings.Contains(banner, "(config") {
		slog.Debug("session connected in configuration mode, exiting to top level",
			slog.String("session_id", s.ID),
			slog.String("mode", s.detector.Detect(banner)),
		)
		s.writeLine("end")
		s.clock.Sleep(s.timing.SettleWait)
		s.drain()
	}

	// Without this, any long output stalls the read loop on a
	// "--More--" pager banner.
	s.writeLine("terminal length 0")
	s.clock.Sleep(s.timing.SettleWait)
	s.drain()
}

// Exec writes command to the device and collects its output until the device
// prompt re-appears or the deadline elapses. waitMs <= 0 selects the default
// deadline; slow commands are raised to at least the configured floor. A
// deadline expiry is not an error: the accumulated (possibly partial, possibly
// empty) output is returned and the caller interprets it.
func (s *Session) Exec(command string, waitMs int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", fmt.Errorf("session %s is closed", s.ID)
	}

	wait := s.effectiveWait(command, waitMs)

	if err := s.writeLine(command); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}

	var out bytes.Buffer
	buf := make([]byte, s.readBuf)

	start := s.clock.Now()
	lastData := start

	for s.clock.Now().Sub(start) < wait {
		n, err := s.conn.ReadWithTimeout(buf, s.timing.PollInterval)
		if err != nil {
			// Transient transport noise; keep polling until the deadline.
			s.clock.Sleep(s.timing.PollInterval)
			continue
		}

		if n > 0 {
			out.Write(buf[:n])
			lastData = s.clock.Now()

			if s.detector.AtPrompt(out.String()) {
				// The prompt arrived; absorb any trailing fragment still in
				// flight, then return without waiting out the deadline.
				s.clock.Sleep(s.timing.GraceWait)
				if g, gerr := s.conn.ReadWithTimeout(buf, s.timing.GraceRead); gerr == nil && g > 0 {
					out.Write(buf[:g])
				}
				return out.String(), nil
			}
			continue
		}

		// No data. If the stream has been quiet past the threshold, the
		// completing prompt may already be sitting in the buffer with no new
		// read event to signal it; re-test before polling again.
		if out.Len() > 0 && s.clock.Now().Sub(lastData) >= s.timing.SilenceThreshold {
			if s.detector.AtPrompt(out.String()) {
				return out.String(), nil
			}
		}
	}

	return out.String(), nil
}

// effectiveWait resolves the deadline for command: the caller's value (or
// the default), raised to the slow-command floor when the command belongs to
// a family known to run long.
func (s *Session) effectiveWait(command string, waitMs int) time.Duration {
	wait := s.timing.DefaultExecWait
	if waitMs > 0 {
		wait = time.Duration(waitMs) * time.Millisecond
	}
	if isSlowCommand(command, s.slowExtra) && wait < s.timing.SlowCommandFloor {
		wait = s.timing.SlowCommandFloor
	}
	return wait
}

// DetectMode runs prompt detection over output.
func (s *Session) DetectMode(output string) string {
	return s.detector.Detect(output)
}

// writeLine writes line plus a line terminator and flushes. The transport
// adapter translates "\n" to the CRLF console devices expect.
func (s *Session) writeLine(line string) error {
	if _, err := s.conn.Write([]byte(line + "\n")); err != nil {
		return err
	}
	return s.conn.Flush()
}

// drain reads and discards buffered output using short bounded reads until a
// read comes back empty, returning what was discarded so callers can inspect
// it for mode markers.
func (s *Session) drain() string {
	var out strings.Builder
	buf := make([]byte, s.readBuf)
	for {
		n, err := s.conn.ReadWithTimeout(buf, s.timing.PollInterval)
		if err != nil || n == 0 {
			break
		}
		out.Write(buf[:n])
	}
	return out.String()
}

// Close releases the transport handle. Errors are swallowed: the remote
// device detects stream closure on its own, so disconnection is best-effort.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if err := s.conn.Close(); err != nil {
		slog.Debug("error closing connection",
			slog.String("session_id", s.ID),
			slog.String("error", err.Error()),
		)
	}
}
