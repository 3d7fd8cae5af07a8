// Package paths resolves the well-known file locations drivesync uses.
// Defaults follow the XDG base directory spec via adrg/xdg; every
// location can be overridden through configuration, and overrides may
// use a leading ~ for the home directory.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const appDir = "drivesync"

// CredentialsFile returns the OAuth client credentials location.
// override wins when non-empty.
func CredentialsFile(override string) string {
	if override != "" {
		return ExpandHome(override)
	}
	return filepath.Join(xdg.ConfigHome, appDir, "credentials.json")
}

// TokenFile returns the cached OAuth token location. override wins when
// non-empty.
func TokenFile(override string) string {
	if override != "" {
		return ExpandHome(override)
	}
	return filepath.Join(xdg.ConfigHome, appDir, "token.json")
}

// LogFile returns the log file location under the XDG state directory.
func LogFile() string {
	return filepath.Join(xdg.StateHome, appDir, appDir+".log")
}

// ExpandHome replaces a leading ~ with the user's home directory. Paths
// without the prefix, and ~user forms, are returned unchanged.
func ExpandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
