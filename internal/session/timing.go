package session

import (
	"time"

	"github.com/cliconsole/telnet-console-mcp/internal/config"
)

// Timing holds the knobs of the adaptive read loop and the connect sequence.
// The defaults trade detection latency against the risk of truncating output;
// they are tunable per deployment, the algorithm is not.
type Timing struct {
	// PollInterval bounds each read attempt while waiting for output.
	PollInterval time.Duration

	// SilenceThreshold is how long the stream must stay quiet before the
	// accumulated buffer is re-tested for a completing prompt.
	SilenceThreshold time.Duration

	// GraceWait and GraceRead absorb trailing fragments after a prompt
	// match: pause GraceWait, then read once more bounded by GraceRead.
	GraceWait time.Duration
	GraceRead time.Duration

	// SlowCommandFloor is the minimum deadline for commands known to exceed
	// interactive latency (ping, traceroute, copy, ...).
	SlowCommandFloor time.Duration

	// DefaultExecWait is the deadline applied when a caller passes none.
	DefaultExecWait time.Duration

	// Connect-sequence pacing.
	WakeupPace time.Duration // between bare line terminators
	WarmupPace time.Duration // between "?" warmup writes
	SettleWait time.Duration // after mode-normalizing commands
}

// DefaultTiming returns the built-in timing profile.
func DefaultTiming() Timing {
	return Timing{
		PollInterval:     100 * time.Millisecond,
		SilenceThreshold: time.Second,
		GraceWait:        200 * time.Millisecond,
		GraceRead:        100 * time.Millisecond,
		SlowCommandFloor: 12 * time.Second,
		DefaultExecWait:  2 * time.Second,
		WakeupPace:       100 * time.Millisecond,
		WarmupPace:       300 * time.Millisecond,
		SettleWait:       300 * time.Millisecond,
	}
}

// TimingFromConfig builds a Timing from configuration, keeping built-in
// pacing for the knobs the config does not expose.
func TimingFromConfig(tc config.TimingConfig) Timing {
	t := DefaultTiming()
	if tc.PollIntervalMs > 0 {
		t.PollInterval = time.Duration(tc.PollIntervalMs) * time.Millisecond
	}
	if tc.SilenceThresholdMs > 0 {
		t.SilenceThreshold = time.Duration(tc.SilenceThresholdMs) * time.Millisecond
	}
	if tc.GraceWaitMs > 0 {
		t.GraceWait = time.Duration(tc.GraceWaitMs) * time.Millisecond
	}
	if tc.GraceReadMs > 0 {
		t.GraceRead = time.Duration(tc.GraceReadMs) * time.Millisecond
	}
	if tc.SlowCommandFloorMs > 0 {
		t.SlowCommandFloor = time.Duration(tc.SlowCommandFloorMs) * time.Millisecond
	}
	if tc.DefaultExecWaitMs > 0 {
		t.DefaultExecWait = time.Duration(tc.DefaultExecWaitMs) * time.Millisecond
	}
	return t
}
