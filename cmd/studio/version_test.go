package main

import (
	"bytes"
	"encoding/json"
	"runtime/debug"
	"strings"
	"testing"
)

func setVersionVars(t *testing.T, version, build, buildTime string) {
	t.Helper()
	origVersion, origBuild, origBuildTime := Version, Build, BuildTime
	t.Cleanup(func() {
		Version, Build, BuildTime = origVersion, origBuild, origBuildTime
	})
	Version, Build, BuildTime = version, build, buildTime
}

func stubBuildInfo(t *testing.T, revision string) {
	t.Helper()
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: revision}}}, true
	}
}

func TestPrintVersionText(t *testing.T) {
	tests := []struct {
		name      string
		build     string
		buildTime string
		want      []string
		wantNot   []string
	}{
		{
			name:    "local build uses the vcs stamp",
			build:   "unknown",
			want:    []string{"studio version 0.8.0\n", "Go version:", "OS/Arch:", "Commit: 1a2b3c4\n"},
			wantNot: []string{"(build:"},
		},
		{
			name:      "release build",
			build:     "abc1234",
			buildTime: "2026-10-19_12:00:00",
			want:      []string{"studio version 0.8.0 (build: abc1234) [2026-10-19_12:00:00]"},
			wantNot:   []string{"Commit:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setVersionVars(t, "0.8.0", tt.build, tt.buildTime)
			stubBuildInfo(t, "1a2b3c4d5e6f")

			var buf bytes.Buffer
			if err := printVersion(&buf, false); err != nil {
				t.Fatalf("printVersion: %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.wantNot {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestPrintVersionJSON(t *testing.T) {
	setVersionVars(t, "1.0.0", "def5678", "")
	stubBuildInfo(t, "ffffffffff")

	var buf bytes.Buffer
	if err := printVersion(&buf, true); err != nil {
		t.Fatalf("printVersion: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if got["version"] != "1.0.0" || got["build"] != "def5678" {
		t.Fatalf("unexpected report %v", got)
	}
	if _, ok := got["commit"]; ok {
		t.Fatalf("commit should be omitted for an injected build: %v", got)
	}
	if _, ok := got["build_time"]; ok {
		t.Fatalf("empty build_time should be omitted: %v", got)
	}
}

func TestVCSRevisionWithoutBuildInfo(t *testing.T) {
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }

	if got := vcsRevision(); got != "" {
		t.Fatalf("vcsRevision() = %q, want empty", got)
	}
}
