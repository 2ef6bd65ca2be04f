// Package probe runs the external reachability probe against a validated host.
// The host is always handed to the probe binary as its own argv element; no
// shell ever sees it.
package probe

import (
	"errors"
	"regexp"
)

// ErrInvalidHost is returned for any host candidate that fails ValidHost.
// Handlers translate it into a 400 response.
var ErrInvalidHost = errors.New("invalid hostname")

// hostPattern is a whitelist: ASCII letters, digits, dot and hyphen, at least
// one of them, and nothing else. Go's $ only matches at the end of the text,
// so a trailing newline is rejected too.
var hostPattern = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)

// ValidHost reports whether candidate may be passed to the probe.
func ValidHost(candidate string) bool {
	return hostPattern.MatchString(candidate)
}
