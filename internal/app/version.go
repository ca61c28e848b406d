package app

import (
	"fmt"
	"runtime/debug"
)

// Build-time variables set via ldflags. Unset values are filled from the
// VCS stamp the Go toolchain embeds in the binary.
var (
	Version   = "dev"
	GitCommit = ""
	GitTag    = ""
	BuildTime = ""
)

const shortCommit = 7

// VersionInfo identifies the running build.
type VersionInfo struct {
	Version   string
	GitCommit string
	GitTag    string
	BuildTime string
	GoVersion string
	Modified  bool
}

// GetVersionInfo merges the ldflags values with the embedded build info.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = info.withBuildInfo(bi)
	}
	return info
}

func (v VersionInfo) withBuildInfo(bi *debug.BuildInfo) VersionInfo {
	v.GoVersion = bi.GoVersion
	if v.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if v.GitCommit == "" {
				v.GitCommit = s.Value
			}
		case "vcs.time":
			if v.BuildTime == "" {
				v.BuildTime = s.Value
			}
		case "vcs.modified":
			v.Modified = s.Value == "true"
		}
	}
	return v
}

// FullString is the version line printed by --version and logged at startup.
func (v VersionInfo) FullString() string {
	version := v.Version
	if v.GitTag != "" {
		version = v.GitTag
	}

	commit := v.GitCommit
	if commit == "" {
		commit = "unknown"
	} else if len(commit) > shortCommit {
		commit = commit[:shortCommit]
	}
	if v.Modified {
		commit += "-dirty"
	}

	built := v.BuildTime
	if built == "" {
		built = "unknown"
	}

	s := fmt.Sprintf("Singularity %s (commit: %s, built: %s", version, commit, built)
	if v.GoVersion != "" {
		s += ", " + v.GoVersion
	}
	return s + ")"
}
