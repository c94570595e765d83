package app

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Set with -ldflags "-X .../internal/app.Version=2026.10.1" by the release build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// buildInfo is swapped in tests.
var buildInfo = debug.ReadBuildInfo

// BuildVersion is the string the intake service reports in its startup
// log and on /health. Local builds without ldflags fall back to the VCS
// stamp Go embeds in the binary.
func BuildVersion() string {
	commit, built := Commit, BuildTime
	if commit == "unknown" {
		commit, built = vcsStamp(built)
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, commit, built)
}

func vcsStamp(built string) (commit, at string) {
	commit, at = "unknown", built
	info, ok := buildInfo()
	if !ok {
		return commit, at
	}
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.time":
			if at == "unknown" {
				at = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && commit != "unknown" {
		commit += "-dirty"
	}
	return commit, at
}

func versionAttr() slog.Attr {
	return slog.String("version", BuildVersion())
}
