// Package version exposes build information for startup logs.
package version

import (
	"fmt"
	"runtime"
)

// Semantic version of the service.
const (
	Major = 1
	Minor = 0
	Patch = 0

	// GitCommit is injected at build time via -ldflags.
	GitCommit = ""

	serviceName = "SolMate"
)

// Version returns the semantic version string.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}

// BuildInfo describes the running build.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Service   string `json:"service"`
}

// GetBuildInfo returns the running build's information.
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version(),
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Service:   serviceName,
	}
}

// String returns a one-line banner for startup logs.
func (b *BuildInfo) String() string {
	s := fmt.Sprintf("%s v%s (go: %s, platform: %s)", b.Service, b.Version, b.GoVersion, b.Platform)
	if b.GitCommit != "" && len(b.GitCommit) >= 7 {
		s += fmt.Sprintf(" (commit: %s)", b.GitCommit[:7])
	}
	return s
}
