package session

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cliconsole/telnet-console-mcp/internal/adapters/realclock"
	"github.com/cliconsole/telnet-console-mcp/internal/adapters/realrand"
	"github.com/cliconsole/telnet-console-mcp/internal/adapters/realtelnet"
	"github.com/cliconsole/telnet-console-mcp/internal/config"
	"github.com/cliconsole/telnet-console-mcp/internal/ports"
	"github.com/cliconsole/telnet-console-mcp/internal/prompt"
)

// Manager is the concurrency-safe session registry. Map mutation is guarded
// here; operations on an individual session are serialized by the session
// itself.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfgMu    sync.RWMutex
	cfg      *config.Config
	detector *prompt.Detector

	dialer ports.Dialer
	clock  ports.Clock
	rand   ports.Random
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDialer sets the transport dialer (tests inject a scripted one).
func WithDialer(d ports.Dialer) ManagerOption {
	return func(m *Manager) { m.dialer = d }
}

// WithClock sets the clock.
func WithClock(c ports.Clock) ManagerOption {
	return func(m *Manager) { m.clock = c }
}

// WithRandom sets the random source used for session ids.
func WithRandom(r ports.Random) ManagerOption {
	return func(m *Manager) { m.rand = r }
}

// NewManager creates a session manager.
func NewManager(cfg *config.Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		dialer:   realtelnet.New(),
		clock:    realclock.New(),
		rand:     realrand.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.detector = buildDetector(cfg)
	return m
}

// buildDetector constructs a prompt detector with any configured custom
// terminator patterns. A bad pattern is skipped, not fatal.
func buildDetector(cfg *config.Config) *prompt.Detector {
	d := prompt.NewDetector()
	for _, expr := range cfg.PromptDetection.CustomPatterns {
		if err := d.AddPattern(expr); err != nil {
			slog.Warn("skipping invalid custom prompt pattern",
				slog.String("pattern", expr),
				slog.String("error", err.Error()),
			)
		}
	}
	return d
}

// Connect opens a connection to host:port under a bounding timeout, runs the
// baseline connect sequence, registers the session, and returns it. On any
// failure nothing is registered. timeoutMs <= 0 selects the configured
// default.
func (m *Manager) Connect(host string, port int, timeoutMs int) (*Session, error) {
	cfg, detector := m.snapshotConfig()

	if m.Count() >= cfg.Session.MaxSessions {
		return nil, fmt.Errorf("max sessions reached (%d)", cfg.Session.MaxSessions)
	}

	timeout := time.Duration(cfg.Session.ConnectTimeoutMs) * time.Millisecond
	if timeoutMs > 0 {
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}

	conn, err := m.dialer.DialTimeout(host, port, timeout)
	if err != nil {
		return nil, &ConnectError{Host: host, Port: port, Err: err}
	}

	sess := &Session{
		ID:        m.generateSessionID(),
		Host:      host,
		Port:      port,
		CreatedAt: m.clock.Now(),
		conn:      conn,
		clock:     m.clock,
		detector:  detector,
		timing:    TimingFromConfig(cfg.Timing),
		readBuf:   cfg.Session.ReadBufferSize,
		slowExtra: cfg.Session.SlowCommands,
	}

	sess.initialize()

	m.mu.Lock()
	if len(m.sessions) >= cfg.Session.MaxSessions {
		m.mu.Unlock()
		sess.Close()
		return nil, fmt.Errorf("max sessions reached (%d)", cfg.Session.MaxSessions)
	}
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	slog.Info("session connected",
		slog.String("session_id", sess.ID),
		slog.String("host", host),
		slog.Int("port", port),
	)

	return sess, nil
}

// Get retrieves a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// List returns summaries of all live sessions, order unspecified.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess.Summary())
	}
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Disconnect removes a session from the registry and releases its transport
// handle. Close errors are swallowed; an unknown id is the only failure.
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	sess.Close()

	slog.Info("session disconnected", slog.String("session_id", id))
	return nil
}

// CloseAll tears down every session. Used at process shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, sess := range m.sessions {
		sessions = append(sessions, sess)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

// DetectMode runs prompt detection over output with the manager's detector.
func (m *Manager) DetectMode(output string) string {
	_, detector := m.snapshotConfig()
	return detector.Detect(output)
}

// UpdateConfig applies a new configuration. Timing, limits, and custom prompt
// patterns affect sessions created after the update; live sessions keep the
// profile they were built with.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	detector := buildDetector(cfg)
	m.cfgMu.Lock()
	m.cfg = cfg
	m.detector = detector
	m.cfgMu.Unlock()
}

func (m *Manager) snapshotConfig() (*config.Config, *prompt.Detector) {
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return m.cfg, m.detector
}

// generateSessionID returns an opaque id like "tn_1a2b3c4d5e6f7081".
func (m *Manager) generateSessionID() string {
	b := make([]byte, 8)
	m.rand.Read(b)
	return "tn_" + hex.EncodeToString(b)
}
