package prompt

import "strings"

// ModeKind classifies a prompt label into the device's command context.
type ModeKind string

const (
	KindUnknown      ModeKind = "unknown"
	KindUser         ModeKind = "user"
	KindPrivileged   ModeKind = "privileged"
	KindConfigGlobal ModeKind = "config-global"
	KindConfigSub    ModeKind = "config-sub"
)

// Kind derives the command context from a mode label's shape. Unknown or
// empty labels classify as KindUnknown.
func Kind(label string) ModeKind {
	switch {
	case label == "" || label == ModeUnknown:
		return KindUnknown
	case strings.Contains(label, "(config)"):
		return KindConfigGlobal
	case strings.Contains(label, "("):
		return KindConfigSub
	case strings.HasSuffix(label, ">"):
		return KindUser
	case strings.HasSuffix(label, "#"):
		return KindPrivileged
	}
	return KindUnknown
}

// IsConfig reports whether the label places the device in any configuration
// mode. Sessions are never handed to callers while a configuration mode is
// active.
func IsConfig(label string) bool {
	k := Kind(label)
	return k == KindConfigGlobal || k == KindConfigSub
}
