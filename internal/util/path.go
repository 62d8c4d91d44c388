package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	AppDir     = "datagrid"
	ConfigFile = "config.toml"
	LogFile    = "datagrid.log"
)

// ConfigDir returns the directory holding datagrid's config file.
// Uses the XDG layout on Linux and platform conventions elsewhere.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", AppDir)
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), AppDir)
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppDir)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", AppDir)
	}
}

// StateDir returns the directory for logs and other runtime files.
func StateDir() string {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, AppDir)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "state", AppDir)
	}
	return ConfigDir()
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
