package prompt

import (
	"regexp"
	"strings"
	"sync"
)

// Detector detects the device prompt in accumulated console output.
// The zero value is not usable; call NewDetector.
type Detector struct {
	mu     sync.RWMutex
	custom []*regexp.Regexp
}

// NewDetector creates a detector with the built-in prompt tiers.
func NewDetector() *Detector {
	return &Detector{}
}

// AddPattern compiles expr and adds it as a custom prompt terminator.
// Custom patterns are consulted before the built-in tiers. A pattern that
// captures a group reports that group as the mode label; otherwise the whole
// match is used.
func (d *Detector) AddPattern(expr string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.custom = append(d.custom, re)
	d.mu.Unlock()
	return nil
}

// Clean strips terminal erase sequences that devices emit during line
// editing: the two-byte "space backspace" erase and any remaining lone
// backspaces. Idempotent: cleaning clean text is a no-op.
func Clean(text string) string {
	text = strings.ReplaceAll(text, " \b", "")
	return strings.ReplaceAll(text, "\b", "")
}

// Detect returns the device's current mode label from raw output, or
// ModeUnknown. It never fails: unparseable text is "unknown", not an error.
func (d *Detector) Detect(text string) string {
	if text == "" {
		return ModeUnknown
	}
	clean := Clean(text)

	d.mu.RLock()
	custom := d.custom
	d.mu.RUnlock()

	for _, re := range custom {
		if m := re.FindStringSubmatch(clean); m != nil {
			if len(m) > 1 && m[1] != "" {
				return strings.TrimSpace(m[1])
			}
			return strings.TrimSpace(m[0])
		}
	}

	for _, re := range []*regexp.Regexp{configPromptRE, execPromptRE} {
		if m := re.FindStringSubmatch(clean); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	// The anchored tiers need a line break before the prompt; a buffer that
	// opens with the prompt, or carries stray trailing output, slips past
	// them. Scan the last few non-empty lines for one that is exactly a
	// prompt.
	return scanTrailingLines(clean)
}

// AtPrompt reports whether the cleaned tail of buffer is a prompt — the
// executor's end-of-output predicate. Unlike Detect it has no trailing-line
// fallback: mid-buffer prompt shapes must not terminate a read early.
func (d *Detector) AtPrompt(buffer string) bool {
	if buffer == "" {
		return false
	}
	clean := Clean(buffer)

	d.mu.RLock()
	custom := d.custom
	d.mu.RUnlock()

	for _, re := range custom {
		if re.MatchString(clean) {
			return true
		}
	}

	return configPromptRE.MatchString(clean) || execPromptRE.MatchString(clean)
}

// scanTrailingLines walks the last trailingLineScan non-empty lines in
// reverse and returns the first that fully matches the prompt grammar.
func scanTrailingLines(clean string) string {
	lines := strings.Split(strings.TrimSpace(clean), "\n")
	if len(lines) > trailingLineScan {
		lines = lines[len(lines)-trailingLineScan:]
	}
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if promptLineRE.MatchString(line) {
			return line
		}
	}
	return ModeUnknown
}
