// Package version holds build information set with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/pandeptwidyaop/bagfilter/internal/version.Version=v1.0.0"
package version

var (
	// Version is the semantic version (e.g., v1.0.0)
	Version = "dev"

	// BuildTime is the time the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)
