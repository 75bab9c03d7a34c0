// Package version carries build identification for the gitattr binary.
package version

import (
	"runtime/debug"
)

const (
	unknown      = "unknown"
	develVersion = "(devel)"

	shortCommitLen = 12

	settingRevision = "vcs.revision"
	settingTime     = "vcs.time"
	settingModified = "vcs.modified"
)

// Set via -ldflags "-X github.com/Sumatoshi-tech/gitattr/pkg/version.Version=...".
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

// InitBinaryVersion fills unset fields from the module build info embedded
// by the Go toolchain. Fields set through ldflags are kept.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		applyBuildInfo(nil)

		return
	}

	applyBuildInfo(info)
}

func applyBuildInfo(info *debug.BuildInfo) {
	if info != nil {
		if Version == "" && info.Main.Version != "" && info.Main.Version != develVersion {
			Version = info.Main.Version
		}

		settings := make(map[string]string, len(info.Settings))
		for _, setting := range info.Settings {
			settings[setting.Key] = setting.Value
		}

		if Commit == "" {
			Commit = shorten(settings[settingRevision])
			if Commit != "" && settings[settingModified] == "true" {
				Commit += "-dirty"
			}
		}

		if Date == "" {
			Date = settings[settingTime]
		}
	}

	if Version == "" {
		Version = "dev"
	}

	if Commit == "" {
		Commit = unknown
	}

	if Date == "" {
		Date = unknown
	}
}

func shorten(revision string) string {
	if len(revision) > shortCommitLen {
		return revision[:shortCommitLen]
	}

	return revision
}
