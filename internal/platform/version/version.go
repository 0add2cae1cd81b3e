package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/etay-atar/Sandbox/internal/platform/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info describes the running sandboxctl binary. The status server serves it
// as JSON on /version.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{Version, Commit, BuildTime, runtime.Version()}
}

// String is the line printed by `sandboxctl version`.
func (i Info) String() string {
	return fmt.Sprintf("sandboxctl %s (commit %s, built %s, %s)", i.Version, i.Commit, i.BuildTime, i.GoVersion)
}

// UserAgent is sent on every request to the analysis backend.
func UserAgent() string {
	return "sandboxctl/" + Version
}
