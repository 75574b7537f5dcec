//go:build e2e

// End-to-end tests against a local TCP stub console device, exercising the
// real transport adapter and the full manager path.
package e2e

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cliconsole/telnet-console-mcp/internal/config"
	"github.com/cliconsole/telnet-console-mcp/internal/prompt"
	"github.com/cliconsole/telnet-console-mcp/internal/session"
	"github.com/cliconsole/telnet-console-mcp/internal/testing/mockdevice"
)

// testConfig shrinks the read-loop timing so the suite runs quickly; the
// connect-sequence pacing is fixed and dominates each test's runtime.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Timing.PollIntervalMs = 20
	cfg.Timing.SilenceThresholdMs = 150
	cfg.Timing.GraceWaitMs = 40
	cfg.Timing.GraceReadMs = 20
	return cfg
}

func connect(t *testing.T, m *session.Manager, dev *mockdevice.Device) *session.Session {
	t.Helper()
	host, port := dev.Addr()
	sess, err := m.Connect(host, port, 2000)
	if err != nil {
		t.Fatalf("Connect to stub device: %v", err)
	}
	return sess
}

func TestExecuteDetectsPrompt(t *testing.T) {
	dev, err := mockdevice.Start("SW1",
		mockdevice.WithResponse("show version", "Cisco IOS Software, Version 15.2(4)E\nUptime is 4 weeks"),
	)
	if err != nil {
		t.Fatalf("start device: %v", err)
	}
	defer dev.Close()

	m := session.NewManager(testConfig())
	defer m.CloseAll()

	sess := connect(t, m, dev)

	start := time.Now()
	out, err := sess.Exec("show version", 5000)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	elapsed := time.Since(start)

	if !strings.Contains(out, "Cisco IOS Software") {
		t.Errorf("output = %q, want device response", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "SW1#") {
		t.Errorf("output does not end at the prompt: %q", out)
	}
	if sess.DetectMode(out) != "SW1#" {
		t.Errorf("mode = %q, want SW1#", sess.DetectMode(out))
	}

	// Adaptive detection: the call returns on prompt arrival, far inside the
	// 5s deadline.
	if elapsed > 2*time.Second {
		t.Errorf("Exec took %v despite an immediate prompt", elapsed)
	}
}

func TestExecuteQuietDeviceHonorsDeadline(t *testing.T) {
	dev, err := mockdevice.Start("SW1", mockdevice.WithQuiet())
	if err != nil {
		t.Fatalf("start device: %v", err)
	}
	defer dev.Close()

	m := session.NewManager(testConfig())
	defer m.CloseAll()

	sess := connect(t, m, dev)

	start := time.Now()
	out, err := sess.Exec("show clock", 500)
	if err != nil {
		t.Fatalf("deadline expiry must not be an error: %v", err)
	}
	elapsed := time.Since(start)

	if out != "" {
		t.Errorf("quiet device produced output: %q", out)
	}
	if elapsed < 450*time.Millisecond {
		t.Errorf("Exec returned after %v, before the deadline", elapsed)
	}
	if elapsed > 3*time.Second {
		t.Errorf("Exec overshot the 500ms deadline by too much: %v", elapsed)
	}
}

func TestConnectExitsConfigurationMode(t *testing.T) {
	dev, err := mockdevice.Start("SW1", mockdevice.WithStartMode("config-if"))
	if err != nil {
		t.Fatalf("start device: %v", err)
	}
	defer dev.Close()

	m := session.NewManager(testConfig())
	defer m.CloseAll()

	sess := connect(t, m, dev)

	out, err := sess.Exec("", 1000)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	mode := sess.DetectMode(out)
	if prompt.IsConfig(mode) {
		t.Errorf("session handed back in configuration mode %q", mode)
	}
	if mode != "SW1#" {
		t.Errorf("mode = %q, want SW1#", mode)
	}
}

func TestUnknownCommandOutput(t *testing.T) {
	dev, err := mockdevice.Start("SW1")
	if err != nil {
		t.Fatalf("start device: %v", err)
	}
	defer dev.Close()

	m := session.NewManager(testConfig())
	defer m.CloseAll()

	sess := connect(t, m, dev)

	out, err := sess.Exec("show nonsense", 2000)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if !strings.Contains(out, "% Invalid input") {
		t.Errorf("output = %q, want device error text", out)
	}
	if sess.DetectMode(out) != "SW1#" {
		t.Errorf("mode = %q, want SW1#", sess.DetectMode(out))
	}
}

func TestDisconnectRemovesSession(t *testing.T) {
	dev, err := mockdevice.Start("SW1")
	if err != nil {
		t.Fatalf("start device: %v", err)
	}
	defer dev.Close()

	m := session.NewManager(testConfig())
	defer m.CloseAll()

	sess := connect(t, m, dev)
	id := sess.ID

	if err := m.Disconnect(id); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if _, err := m.Get(id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Get after disconnect = %v, want ErrNotFound", err)
	}
	if _, err := sess.Exec("show version", 500); err == nil {
		t.Error("Exec on a disconnected session should fail")
	}
}

func TestConnectRefused(t *testing.T) {
	// An address nothing listens on: grab a port, then close it.
	dev, err := mockdevice.Start("SW1")
	if err != nil {
		t.Fatalf("start device: %v", err)
	}
	host, port := dev.Addr()
	dev.Close()

	m := session.NewManager(testConfig())

	_, err = m.Connect(host, port, 1000)
	if err == nil {
		t.Fatal("Connect to a closed port should fail")
	}
	var ce *session.ConnectError
	if !errors.As(err, &ce) {
		t.Errorf("error type = %T, want *session.ConnectError", err)
	}
	if m.Count() != 0 {
		t.Errorf("failed connect left %d sessions", m.Count())
	}
}
