package session

import "strings"

// slowCommandPrefixes are command families known to exceed interactive
// latency. A ping alone is five probes at up to two seconds each; tech
// dumps, copies, and reloads run longer still. Matching is a
// case-insensitive prefix test.
var slowCommandPrefixes = []string{
	"ping",
	"traceroute",
	"tracert",
	"show tech",
	"copy",
	"write",
	"reload",
	"debug",
}

// isSlowCommand reports whether command belongs to a slow family, checking
// the built-in prefixes plus any configured extras.
func isSlowCommand(command string, extra []string) bool {
	c := strings.ToLower(strings.TrimSpace(command))
	for _, p := range slowCommandPrefixes {
		if strings.HasPrefix(c, p) {
			return true
		}
	}
	for _, p := range extra {
		if p != "" && strings.HasPrefix(c, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
