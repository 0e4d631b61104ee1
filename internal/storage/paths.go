// Package storage persists unlocked achievements and finished-game
// statistics. Games in progress are never stored.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "cheesychess"

// DataDir returns the platform-specific data directory for the application.
// - macOS: ~/Library/Application Support/cheesychess/
// - Linux: $XDG_DATA_HOME/cheesychess/ or ~/.local/share/cheesychess/
// - Windows: %APPDATA%/cheesychess/
// The directory is not created.
func DataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	return filepath.Join(baseDir, appName), nil
}

// DatabaseDir returns the badger directory under dataDir, creating it.
func DatabaseDir(dataDir string) (string, error) {
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return dbDir, nil
}
