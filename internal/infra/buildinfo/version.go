package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"

	// GoVersion is the Go version used to build.
	GoVersion = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

var (
	embeddedOnce sync.Once
	embedded     Info
)

// Get returns the build information. Fields not set via ldflags fall back
// to the embedded module build info.
func Get() Info {
	embeddedOnce.Do(func() {
		embedded = Info{Commit: "unknown", BuildTime: "unknown", GoVersion: runtime.Version()}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				embedded.Commit = s.Value
			case "vcs.time":
				embedded.BuildTime = s.Value
			}
		}
	})

	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Commit == "unknown" {
		info.Commit = embedded.Commit
	}
	if info.BuildTime == "unknown" {
		info.BuildTime = embedded.BuildTime
	}
	if info.GoVersion == "unknown" {
		info.GoVersion = embedded.GoVersion
	}
	return info
}

// String returns a formatted version string.
func String() string {
	info := Get()
	return info.Version + " (" + shortCommit(info.Commit) + ") built at " + info.BuildTime
}

// UserAgent returns the User-Agent sent to the backend.
func UserAgent() string {
	return "cricket-cli/" + Version
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
