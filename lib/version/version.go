// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"slices"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Build describes the running binary and the on-disk formats it
// reads and writes. "attrspec version --json" prints it.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`

	// Formats maps each persisted format (capture files, the spec
	// cache) to the version this binary writes.
	Formats map[string]int `json:"formats,omitempty"`
}

// Current returns the build information of this binary. formats is
// copied into the result.
func Current(formats map[string]int) Build {
	build := Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if len(formats) > 0 {
		build.Formats = make(map[string]int, len(formats))
		for name, version := range formats {
			build.Formats[name] = version
		}
	}
	return build
}

// Info returns a formatted version string suitable for --version output.
func (b Build) Info() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.BuildTime)
}

// Full returns detailed version information including the Go version
// and format versions, one per line.
func (b Build) Full() string {
	full := fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", b.Info(), b.GoVersion, b.Platform)
	for _, name := range sortedKeys(b.Formats) {
		full += fmt.Sprintf("\n  %s format: v%d", name, b.Formats[name])
	}
	return full
}

func sortedKeys(formats map[string]int) []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
