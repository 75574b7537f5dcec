package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cliconsole/telnet-console-mcp/internal/config"
	"github.com/cliconsole/telnet-console-mcp/internal/testing/fakes/fakeclock"
	"github.com/cliconsole/telnet-console-mcp/internal/testing/fakes/fakerand"
	"github.com/cliconsole/telnet-console-mcp/internal/testing/fakes/faketelnet"
)

// scriptedDialer hands out connections backed by a device that answers every
// line with a privileged prompt.
func scriptedDialer(clock *fakeclock.Clock) *faketelnet.Dialer {
	return faketelnet.NewDialer(func() *faketelnet.Conn {
		c := faketelnet.NewConn(clock)
		c.Handler = func(line string) string { return "\r\nSW1#" }
		return c
	})
}

func newTestManager(cfg *config.Config, dialer *faketelnet.Dialer, clock *fakeclock.Clock) *Manager {
	return NewManager(cfg,
		WithDialer(dialer),
		WithClock(clock),
		WithRandom(fakerand.NewSequential()),
	)
}

func TestManagerConnect(t *testing.T) {
	clock := fakeclock.New(time.Unix(1700000000, 0))
	dialer := scriptedDialer(clock)
	m := newTestManager(config.DefaultConfig(), dialer, clock)

	sess, err := m.Connect("10.0.0.1", 23, 0)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if sess.ID != "tn_0001020304050607" {
		t.Errorf("session id = %q, want tn_0001020304050607", sess.ID)
	}
	if dialed := dialer.Dialed(); len(dialed) != 1 || dialed[0] != "10.0.0.1:23" {
		t.Errorf("dialed = %v, want [10.0.0.1:23]", dialed)
	}

	got, err := m.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != sess {
		t.Error("Get returned a different session")
	}

	summaries := m.List()
	if len(summaries) != 1 {
		t.Fatalf("List returned %d summaries, want 1", len(summaries))
	}
	sum := summaries[0]
	if sum.SessionID != sess.ID || sum.Host != "10.0.0.1" || sum.Port != 23 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestManagerConnectDialFailure(t *testing.T) {
	clock := fakeclock.New(time.Unix(0, 0))
	dialer := scriptedDialer(clock)
	dialer.Err = errors.New("connection refused")
	m := newTestManager(config.DefaultConfig(), dialer, clock)

	_, err := m.Connect("10.0.0.1", 23, 0)
	if err == nil {
		t.Fatal("Connect should fail when the dial fails")
	}

	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want *ConnectError", err)
	}
	if ce.Host != "10.0.0.1" || ce.Port != 23 {
		t.Errorf("ConnectError endpoint = %s:%d", ce.Host, ce.Port)
	}
	if !strings.Contains(err.Error(), "10.0.0.1:23") {
		t.Errorf("error %q does not name the endpoint", err.Error())
	}
	if m.Count() != 0 {
		t.Errorf("failed connect left %d sessions registered", m.Count())
	}
}

func TestManagerGetUnknown(t *testing.T) {
	clock := fakeclock.New(time.Unix(0, 0))
	m := newTestManager(config.DefaultConfig(), scriptedDialer(clock), clock)

	_, err := m.Get("tn_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "tn_missing") {
		t.Errorf("error %q does not name the session id", err.Error())
	}
}

func TestManagerDisconnect(t *testing.T) {
	clock := fakeclock.New(time.Unix(0, 0))
	dialer := scriptedDialer(clock)
	m := newTestManager(config.DefaultConfig(), dialer, clock)

	sess, err := m.Connect("10.0.0.1", 23, 0)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := m.Disconnect(sess.ID); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if !dialer.Conns()[0].Closed() {
		t.Error("transport was not closed on disconnect")
	}
	if _, err := m.Get(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after disconnect = %v, want ErrNotFound", err)
	}
	if err := m.Disconnect(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Disconnect = %v, want ErrNotFound", err)
	}
}

func TestManagerMaxSessions(t *testing.T) {
	clock := fakeclock.New(time.Unix(0, 0))
	dialer := scriptedDialer(clock)
	cfg := config.DefaultConfig()
	cfg.Session.MaxSessions = 1
	m := newTestManager(cfg, dialer, clock)

	if _, err := m.Connect("10.0.0.1", 23, 0); err != nil {
		t.Fatalf("first Connect: %v", err)
	}

	_, err := m.Connect("10.0.0.2", 23, 0)
	if err == nil || !strings.Contains(err.Error(), "max sessions") {
		t.Fatalf("second Connect = %v, want max sessions error", err)
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}
}

func TestManagerCloseAll(t *testing.T) {
	clock := fakeclock.New(time.Unix(0, 0))
	dialer := scriptedDialer(clock)
	m := newTestManager(config.DefaultConfig(), dialer, clock)

	if _, err := m.Connect("10.0.0.1", 23, 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := m.Connect("10.0.0.2", 2023, 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	m.CloseAll()

	if m.Count() != 0 {
		t.Errorf("Count after CloseAll = %d, want 0", m.Count())
	}
	for i, c := range dialer.Conns() {
		if !c.Closed() {
			t.Errorf("connection %d not closed", i)
		}
	}
}

func TestManagerDetectModeCustomPattern(t *testing.T) {
	clock := fakeclock.New(time.Unix(0, 0))
	cfg := config.DefaultConfig()
	cfg.PromptDetection.CustomPatterns = []string{`[\r\n]\[(\w+)\]\$\s*$`}
	m := newTestManager(cfg, scriptedDialer(clock), clock)

	if got := m.DetectMode("motd\r\n[edge1]$"); got != "edge1" {
		t.Errorf("DetectMode = %q, want edge1", got)
	}
}

func TestManagerUpdateConfig(t *testing.T) {
	clock := fakeclock.New(time.Unix(0, 0))
	m := newTestManager(config.DefaultConfig(), scriptedDialer(clock), clock)

	if got := m.DetectMode("motd\r\n[edge1]$"); got != "unknown" {
		t.Fatalf("DetectMode before update = %q, want unknown", got)
	}

	cfg := config.DefaultConfig()
	cfg.PromptDetection.CustomPatterns = []string{`[\r\n]\[(\w+)\]\$\s*$`}
	m.UpdateConfig(cfg)

	if got := m.DetectMode("motd\r\n[edge1]$"); got != "edge1" {
		t.Errorf("DetectMode after update = %q, want edge1", got)
	}
}

func TestBuildDetectorSkipsInvalidPattern(t *testing.T) {
	clock := fakeclock.New(time.Unix(0, 0))
	cfg := config.DefaultConfig()
	cfg.PromptDetection.CustomPatterns = []string{`[unclosed`, `[\r\n]router%\s*$`}
	m := newTestManager(cfg, scriptedDialer(clock), clock)

	if got := m.DetectMode("out\r\nrouter%"); got != "router%" {
		t.Errorf("DetectMode = %q, want router%% (valid pattern kept)", got)
	}
}

func TestGenerateSessionID(t *testing.T) {
	clock := fakeclock.New(time.Unix(0, 0))
	m := newTestManager(config.DefaultConfig(), scriptedDialer(clock), clock)

	first := m.generateSessionID()
	second := m.generateSessionID()

	if first != "tn_0001020304050607" {
		t.Errorf("first id = %q, want tn_0001020304050607", first)
	}
	if second != "tn_08090a0b0c0d0e0f" {
		t.Errorf("second id = %q, want tn_08090a0b0c0d0e0f", second)
	}
}
