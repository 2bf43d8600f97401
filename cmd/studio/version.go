package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version information, set at build time with -ldflags "-X main.Version=...".
// Version is also the running version the update check compares against.
var (
	Version   = "0.8.0"
	Build     = "unknown"
	BuildTime = ""
)

var readBuildInfo = debug.ReadBuildInfo

type versionInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if Build != "unknown" {
		info.Build = Build
	}
	// Without an injected build id, fall back to the VCS stamp.
	if info.Build == "" {
		info.Commit = vcsRevision()
	}
	return info
}

func vcsRevision() string {
	bi, ok := readBuildInfo()
	if !ok || bi == nil {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) > 7 {
			return s.Value[:7]
		}
	}
	return ""
}

func (v versionInfo) String() string {
	var b strings.Builder
	b.WriteString("studio version " + v.Version)
	if v.Build != "" {
		fmt.Fprintf(&b, " (build: %s)", v.Build)
	}
	if v.BuildTime != "" {
		fmt.Fprintf(&b, " [%s]", v.BuildTime)
	}
	fmt.Fprintf(&b, "\nGo version: %s\nOS/Arch: %s\n", v.GoVersion, v.Platform)
	if v.Commit != "" {
		fmt.Fprintf(&b, "Commit: %s\n", v.Commit)
	}
	return b.String()
}

// printVersion writes the version report, as JSON when asJSON is set.
func printVersion(w io.Writer, asJSON bool) error {
	info := currentVersionInfo()
	if !asJSON {
		_, err := io.WriteString(w, info.String())
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
