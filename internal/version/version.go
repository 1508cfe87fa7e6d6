// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the build metadata of the running gateway.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the build metadata.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Release reports whether the binary was built with an injected version.
func (i Info) Release() bool { return i.Version != "dev" && i.Version != "" }

func (i Info) String() string {
	return fmt.Sprintf("querygate %s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}
