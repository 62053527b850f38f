package version

// version is set at build time with -ldflags "-X github.com/triviatastic/triviatastic/pkg/version.version=..."
var version = "dev"

// Get returns the build version string.
func Get() string {
	return version
}
