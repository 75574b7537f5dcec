// Package prompt provides device prompt detection for console sessions.
//
// A console device signals readiness by printing a prompt whose shape encodes
// its current mode: "SW1>" (user), "SW1#" (privileged), "SW1(config)#"
// (global configuration), "SW1(config-if)#" (sub-configuration). There is no
// framing beyond that convention, so detection is anchored to the tail of the
// output buffer.
package prompt

import "regexp"

// ModeUnknown is returned when no prompt-shaped line is found.
const ModeUnknown = "unknown"

// The two built-in detection tiers, applied in order. Both require the match
// to terminate the buffer (modulo trailing whitespace) and to sit at the
// start of a line, so a prompt echoed mid-output does not end a read early.
var (
	// Tier 1: configuration sub-mode, e.g. "SW1(config)#", "SW1(config-if)#".
	configPromptRE = regexp.MustCompile(`[\r\n]([A-Za-z0-9_-]+\([a-z0-9-]+\)[#>])\s*$`)

	// Tier 2: privileged or user mode, e.g. "SW1#", "SW1>".
	execPromptRE = regexp.MustCompile(`[\r\n]([A-Za-z0-9_-]+[#>])\s*$`)

	// Fallback grammar for scanning trailing lines: a whole line that is
	// nothing but a prompt.
	promptLineRE = regexp.MustCompile(`^[A-Za-z0-9_-]+(\([a-z0-9-]+\))?[#>]$`)
)

// trailingLineScan is how many non-empty lines the fallback inspects,
// newest first.
const trailingLineScan = 5
