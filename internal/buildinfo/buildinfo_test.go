package buildinfo

import (
	"runtime/debug"
	"testing"
)

func stamp(t *testing.T, version, commit string, info *debug.BuildInfo) {
	t.Helper()
	oldV, oldC, oldR := Version, Commit, readBuildInfo
	t.Cleanup(func() { Version, Commit, readBuildInfo = oldV, oldC, oldR })
	Version, Commit = version, commit
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestShort(t *testing.T) {
	vcs := &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}}}
	tests := []struct {
		name            string
		version, commit string
		info            *debug.BuildInfo
		want            string
	}{
		{name: "release", version: "v1.2.0", commit: "abc", want: "v1.2.0"},
		{name: "commit", version: "dev", commit: "abc", want: "abc"},
		{name: "vcs fallback", version: "dev", commit: "unknown", info: vcs, want: "0123456789ab"},
		{name: "nothing", version: "dev", commit: "unknown", want: "dev"},
	}
	for _, tt := range tests {
		stamp(t, tt.version, tt.commit, tt.info)
		if got := Short(); got != tt.want {
			t.Fatalf("%s: Short() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	stamp(t, "v0.3.1", "deadbeef", nil)
	Date = "2026-01-02"
	t.Cleanup(func() { Date = "unknown" })
	if got, want := String("surfrender"), "surfrender v0.3.1 (commit deadbeef, built 2026-01-02)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
