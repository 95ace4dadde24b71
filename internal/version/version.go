// Package version exposes build metadata for the steamrescue binary.
package version

import (
	"runtime/debug"
	"strings"
)

// These variables are populated at build time via -ldflags, e.g.
//
//	-X github.com/steamrescue/steamrescue/internal/version.Version=v0.3.0
//	-X github.com/steamrescue/steamrescue/internal/version.Commit=abcdef123
//	-X github.com/steamrescue/steamrescue/internal/version.Date=2026-08-28T12:00:00Z
var (
	// Version holds the semantic version of the binary.
	Version = "0.3.0-dev"

	// Commit holds the VCS commit hash used to build the binary (optional).
	Commit = ""

	// Date holds the build timestamp (optional).
	Date = ""
)

// Seam for tests.
var readBuildInfo = debug.ReadBuildInfo

// String returns the effective version, preferring the ldflags-injected
// value, then the main module version from build info, then a development
// placeholder. A leading "v" tag prefix is stripped.
func String() string {
	v := strings.TrimSpace(Version)

	if v == "" {
		if info, ok := readBuildInfo(); ok {
			if mv := strings.TrimSpace(info.Main.Version); mv != "" && mv != "(devel)" {
				v = mv
			}
		}
	}

	if v == "" {
		v = "0.0.0-dev"
	}

	return strings.TrimPrefix(v, "v")
}

// Build returns a short build descriptor from the optional commit and date
// fields, or "development" when neither is set.
func Build() string {
	switch {
	case Commit != "" && Date != "":
		return Commit + " (" + Date + ")"
	case Commit != "":
		return Commit
	case Date != "":
		return Date
	default:
		return "development"
	}
}
