// Package buildinfo reports which regroup build is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/regroup/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/regroup/pkg/buildinfo.Commit=$(git rev-parse HEAD)" ./cmd/regroup
//
// Builds made with go install fall back to the module version and VCS
// stamp recorded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var resolveOnce sync.Once

// resolve fills unset variables from the embedded build info.
func resolve() {
	resolveOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && Commit == "none":
				Commit = s.Value
			case s.Key == "vcs.time" && Date == "unknown":
				Date = s.Value
			}
		}
	})
}

// Current returns the version string of the running binary.
func Current() string {
	resolve()
	return Version
}

// Template returns the cobra version template.
func Template() string {
	resolve()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
