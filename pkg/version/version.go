// Package version reports the tickdown build version.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/tickdown/tickdown-go/pkg/persistence"
)

// Build-time variables injected via ldflags:
//
//	-X github.com/tickdown/tickdown-go/pkg/version.version=v1.2.3
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version       string `json:"version"`
	Commit        string `json:"commit,omitempty"`
	Date          string `json:"date,omitempty"`
	GoVersion     string `json:"go_version,omitempty"`
	RecordVersion int    `json:"record_version"`
}

// Get returns the build information. Without ldflags the module version and
// VCS revision recorded by the Go toolchain are used when available.
func Get() Info {
	info := Info{
		Version:       version,
		RecordVersion: persistence.RecordVersion,
	}
	if commit != "none" {
		info.Commit = commit
	}
	if date != "unknown" {
		info.Date = date
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	if info.Commit == "" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				info.Commit = s.Value
			}
		}
	}
	return info
}

// String returns the version alone.
func (i Info) String() string {
	return i.Version
}

// Long returns a multi-line description for the version command.
func (i Info) Long() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tickdown %s\n", i.Version)
	if i.Commit != "" {
		fmt.Fprintf(&b, "  commit: %s\n", i.Commit)
	}
	if i.Date != "" {
		fmt.Fprintf(&b, "  built:  %s\n", i.Date)
	}
	if i.GoVersion != "" {
		fmt.Fprintf(&b, "  go:     %s\n", i.GoVersion)
	}
	fmt.Fprintf(&b, "  record format: v%d\n", i.RecordVersion)
	return b.String()
}
