// Package version reports the siteforge release. Values are injected at
// link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/siteforge/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// String renders the version with the commit and build time when known.
func String() string {
	s := Version
	if GitCommit != "" {
		s += fmt.Sprintf(" (%s)", GitCommit)
	}
	if BuildTime != "" {
		s += " built " + BuildTime
	}
	return s
}
