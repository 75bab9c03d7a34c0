package version

import "runtime/debug"

// ApplyBuildInfo exposes applyBuildInfo for tests.
func ApplyBuildInfo(info *debug.BuildInfo) {
	applyBuildInfo(info)
}

// Reset clears the build identification.
func Reset() {
	Version, Commit, Date = "", "", ""
}
