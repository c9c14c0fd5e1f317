// Package version provides version information and build metadata for restage.
//
// This package handles version reporting for the restage binary, supporting
// both compile-time version injection via build flags and runtime version
// detection using Go's build info. It works unchanged in development, CI, and
// release builds.
//
// Version Information Sources:
//   - Compile-time variables (Version, Commit, Date) set via -ldflags
//   - Runtime build info from debug.ReadBuildInfo()
//   - Fallback defaults for development builds
//
// The package provides multiple version formats:
//   - GetVersion(): Simple version string
//   - GetFullVersion(): Formatted version with commit and build date
//   - GetInfo(): Complete version information as a struct
//
// Release builds set version information at build time using:
//
//	-ldflags "-X github.com/stageforge/restage/version.Version=v1.0.0"
package version
