// Package version reports the rolebot build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/example/rolebot/internal/version.Commit=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = "unknown"
)

// String returns the build description shown by `rolebot version` and --version.
// Without an ldflags commit it falls back to the VCS revision stamped by go build.
func String() string {
	return fmt.Sprintf("rolebot %s (commit: %s, built: %s)", Version, shortCommit(revision()), BuildTime)
}

func revision() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
