// Package version holds build metadata, overridden at link time with
// -ldflags "-X github.com/doeshing/sky-health/internal/version.Commit=...".
package version

var (
	// Version is the release number printed by --version.
	Version = "1.0.0"
	// Commit is the VCS revision the binary was built from.
	Commit = ""
	// BuildDate is the UTC build timestamp.
	BuildDate = ""
)

// Name is the program name shown in version output.
const Name = "sky-health"

// Short returns the one-line version string, e.g. "sky-health v1.0.0".
func Short() string {
	return Name + " v" + Version
}
