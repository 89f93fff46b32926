// Package version exposes the build's version identity. Release builds set
// it through ldflags:
//
//	go build -ldflags="-X github.com/ringscope/ringscope/internal/version.Version=v1.2.3 \
//	                   -X github.com/ringscope/ringscope/internal/version.Commit=abc123"
//
// Development builds fall back to the VCS stamp Go embeds in the binary.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	// Version is the semantic version of the application.
	Version = ""
	// Commit is the git commit hash.
	Commit = ""
)

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo()
	}
	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills whatever ldflags left empty using the module's
// embedded VCS settings, when they exist.
func fromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if Commit == "" {
		if rev := settings["vcs.revision"]; rev != "" {
			if len(rev) > 7 {
				rev = rev[:7]
			}
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			Commit = rev
		}
	}

	// Build info carries no tags, so a dev version dated by the commit is
	// the best available.
	if Version == "" {
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			Version = "dev-" + t.Format("20060102")
		}
	}
}

// Full returns the version and commit in one printable string.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
