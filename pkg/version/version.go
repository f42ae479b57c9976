// Package version carries the build identity of the annorewrite binary.
package version

import (
	"runtime/debug"
)

const unknown = "<unknown>"

// Set with -ldflags "-X github.com/Sumatoshi-tech/annorewrite/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills values not set at link time from the module build
// info embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknown && s.Value != "" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == unknown && s.Value != "" {
				Date = s.Value
			}
		}
	}
}

// String renders the version line printed by the CLI.
func String() string {
	return "annorewrite " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
