package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/drivesync/drivesync/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/drivesync/drivesync/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/drivesync/drivesync/internal/version.Date={{.Date}}
)
