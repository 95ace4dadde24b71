package version

import (
	"runtime/debug"
	"testing"
)

func patchGlobals(t *testing.T, versionValue string, reader func() (*debug.BuildInfo, bool)) {
	t.Helper()
	origVersion := Version
	origReader := readBuildInfo

	Version = versionValue
	if reader != nil {
		readBuildInfo = reader
	}

	t.Cleanup(func() {
		Version = origVersion
		readBuildInfo = origReader
	})
}

func TestString_PrefersInjectedVersion(t *testing.T) {
	patchGlobals(t, " v1.2.3 ", func() (*debug.BuildInfo, bool) {
		t.Fatalf("unexpected call to readBuildInfo when version is set")
		return nil, false
	})

	if got := String(); got != "1.2.3" {
		t.Fatalf("String() = %q, want %q", got, "1.2.3")
	}
}

func TestString_UsesBuildInfoWhenVersionEmpty(t *testing.T) {
	patchGlobals(t, "", func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v2.3.4"}}, true
	})

	if got := String(); got != "2.3.4" {
		t.Fatalf("String() = %q, want %q", got, "2.3.4")
	}
}

func TestString_FallsBackToPlaceholder(t *testing.T) {
	testCases := []struct {
		name   string
		reader func() (*debug.BuildInfo, bool)
	}{
		{"no build info", func() (*debug.BuildInfo, bool) { return nil, false }},
		{"empty version", func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Main: debug.Module{Version: ""}}, true
		}},
		{"devel version", func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			patchGlobals(t, "", tc.reader)

			if got := String(); got != "0.0.0-dev" {
				t.Fatalf("String() = %q, want %q", got, "0.0.0-dev")
			}
		})
	}
}

func TestBuild(t *testing.T) {
	origCommit, origDate := Commit, Date
	t.Cleanup(func() { Commit, Date = origCommit, origDate })

	Commit, Date = "", ""
	if got := Build(); got != "development" {
		t.Errorf("Build() = %q, want %q", got, "development")
	}

	Commit, Date = "abc123", ""
	if got := Build(); got != "abc123" {
		t.Errorf("Build() = %q, want %q", got, "abc123")
	}

	Commit, Date = "abc123", "2026-08-28"
	if got := Build(); got != "abc123 (2026-08-28)" {
		t.Errorf("Build() = %q, want %q", got, "abc123 (2026-08-28)")
	}
}
