// Package version holds build information, set with -ldflags at release.
package version

var (
	// Version is the release version
	Version = "0.1.0"

	// Commit is the source revision
	Commit = "dev"
)

// String returns the printable version
func String() string {
	return Version + " (" + Commit + ")"
}
