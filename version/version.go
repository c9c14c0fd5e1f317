package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// These will be set by build flags or default to development values
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info contains version information
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Package string `json:"package"`
}

// buildSetting returns the named key from the binary's embedded build info.
func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// GetVersion returns the version string, preferring compile-time version if available
func GetVersion() string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "development"
}

// GetCommit returns the git commit hash, preferring compile-time commit if available
func GetCommit() string {
	if Commit != "unknown" && Commit != "" {
		return Commit
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		return rev
	}
	return "unknown"
}

// GetBuildDate returns the build date, preferring compile-time date if available
func GetBuildDate() string {
	if Date != "unknown" && Date != "" {
		return Date
	}
	if ts := buildSetting("vcs.time"); ts != "" {
		return ts
	}
	return "unknown"
}

// GetInfo returns complete version information
func GetInfo() Info {
	return Info{
		Version: GetVersion(),
		Commit:  GetCommit(),
		Date:    GetBuildDate(),
		Package: "restage",
	}
}

// GetFullVersion returns a formatted version string with commit and date
func GetFullVersion() string {
	info := GetInfo()
	if info.Commit != "unknown" && len(info.Commit) > 7 {
		shortCommit := info.Commit[:7]
		if info.Date != "unknown" {
			return fmt.Sprintf("%s (%s, built %s)", info.Version, shortCommit, info.Date)
		}
		return fmt.Sprintf("%s (%s)", info.Version, shortCommit)
	}
	return info.Version
}
