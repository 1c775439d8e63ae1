package version

// Version contains the application version information.
// Set via build-time ldflags in release builds:
// go build -ldflags "-X github.com/IQDevs/blog/internal/version.Version=v1.2.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
