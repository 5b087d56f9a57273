// Package buildinfo holds version information stamped in at build time:
//
//	go build -ldflags "-X github.com/davafons/dial/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/davafons/dial/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/davafons/dial/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// The version also takes part in notebook cache keys, so a new release
// never serves notebooks generated by an older one.
package buildinfo

import "fmt"

var (
	// Version is the semantic version, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
