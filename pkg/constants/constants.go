// Package constants provides shared constants used throughout the
// fleetrec codebase. This includes limits, file permissions, and other
// values that should be consistent across the application.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// FindingSampleCap is the maximum number of identifiers attached to
	// a single audit finding. Large result sets are truncated to this
	// many entries for display; the finding count stays exact.
	FindingSampleCap = 50

	// CanonicalCategoryCap is the agreed upper bound on the canonical
	// service-event vocabulary. The fixed set stays well under it.
	CanonicalCategoryCap = 20

	// DefaultRetention is how many run snapshots the store keeps when
	// not configured otherwise.
	DefaultRetention = 12
)

// Timeout constants define various timeout durations used in the application
const (
	// RunTimeout is the default ceiling for one full reconciliation run
	RunTimeout = 10 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 15 * time.Minute
)

// MonthLayout is the format used for month buckets in quality metrics
// and rollups (e.g. "2024-05").
const MonthLayout = "2006-01"
