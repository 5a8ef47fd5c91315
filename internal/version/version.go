// Package version provides build-time version information.
package version

// Name is the application name used for window titles and config paths.
const Name = "expo-floorplan"

// Title is the human-readable application name.
const Title = "Expo Floor Plan"

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// String returns the version line printed by the command-line tools.
func String() string {
	return Name + " " + Version + " (" + GitCommit + ", built " + BuildTime + ")"
}
