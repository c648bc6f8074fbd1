// Package version provides build-time version information.
package version

import "fmt"

// Set at build time with -ldflags "-X race-clock/internal/version.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns a one-line version banner.
func String() string {
	return fmt.Sprintf("race-clock %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
