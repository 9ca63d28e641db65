// Package paths provides XDG-compliant path resolution for tos.
//
// Resolution order:
// 1. TOS_HOME (portable root) → $TOS_HOME/{config,data,state,cache,run}
// 2. XDG env vars → $XDG_*_HOME/tos
// 3. Platform defaults → ~/.config/tos, ~/.local/share/tos, etc.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "tos"

// baseDir resolves one XDG base directory. sub is the TOS_HOME child,
// xdgVar the XDG override and fallback the path under the home directory.
func baseDir(sub, xdgVar string, fallback ...string) string {
	if tosHome := os.Getenv("TOS_HOME"); tosHome != "" {
		return filepath.Join(tosHome, sub)
	}
	if dir := os.Getenv(xdgVar); dir != "" {
		return filepath.Join(dir, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(append(append([]string{homeDir}, fallback...), appName)...)
	}
	return ""
}

// ConfigDir returns the configuration directory, home of tos.yml.
func ConfigDir() string {
	return baseDir("config", "XDG_CONFIG_HOME", ".config")
}

// DataDir returns the data directory.
func DataDir() string {
	return baseDir("data", "XDG_DATA_HOME", ".local", "share")
}

// StateDir returns the state directory.
// Used for the pid file, the dispatch journal and persisted operator toggles.
func StateDir() string {
	return baseDir("state", "XDG_STATE_HOME", ".local", "state")
}

// CacheDir returns the cache directory.
func CacheDir() string {
	return baseDir("cache", "XDG_CACHE_HOME", ".cache")
}

// RuntimeDir returns the directory for sockets.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir (macOS).
func RuntimeDir() string {
	if tosHome := os.Getenv("TOS_HOME"); tosHome != "" {
		return filepath.Join(tosHome, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return StateDir()
}

// SocketPath returns the path to the brain's unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "brain.sock")
}

// PidFilePath returns the path to the brain's PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "brain.pid")
}

// JournalPath returns the path to the dispatch journal database.
func JournalPath() string {
	return filepath.Join(StateDir(), "journal.db")
}

// StateFilePath returns the path to the persisted operator toggles.
func StateFilePath() string {
	return filepath.Join(StateDir(), "state.yml")
}

// EnsureDirs creates all tos directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		DataDir(),
		StateDir(),
		CacheDir(),
		RuntimeDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
