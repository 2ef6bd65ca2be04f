// Package repository stores probe records.  Two backends exist: a SQL
// history table (MySQL or SQLite) and a capped Redis list of recent probes.
// Both are optional; constructors given a nil handle return a repo whose
// methods fail with ErrNotConfigured so callers can degrade gracefully.
package repository

import "errors"

// ErrNotConfigured is returned by a repository whose backing store was not
// configured at startup.
var ErrNotConfigured = errors.New("store not configured")
