// Package buildinfo carries the version identity stamped into the
// binary at build time, plus process uptime for the version command.
package buildinfo

import (
	"fmt"
	"runtime"
	"time"
)

// Set via -ldflags="-X github.com/tavila/amparo-agent/internal/buildinfo.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var startTime = time.Now()

// Info returns build and runtime identity as a map, for the version
// command's JSON output.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     Uptime().String(),
	}
}

// Uptime returns the duration since process start.
func Uptime() time.Duration {
	return time.Since(startTime).Truncate(time.Second)
}

// String returns a one-line summary for startup logging.
func String() string {
	return fmt.Sprintf("Amparo %s (%s) built %s", Version, Commit, BuildDate)
}

// UserAgent identifies outbound HTTP requests to model backends.
func UserAgent() string {
	return fmt.Sprintf("amparo-agent/%s", Version)
}
