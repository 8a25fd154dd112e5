// Package config handles vundoctl's runtime configuration.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds vundoctl's runtime configuration: where the undo-file
// index lives, the engine policy defaults, and logging.
type Config struct {
	DataDir string `conf:"datadir"`

	// Undo holds the engine policy defaults applied to every buffer
	// that doesn't set its own override (spec.md §5 Policy).
	Undo UndoConfig

	// Logging
	Log LogConfig
}

// UndoConfig holds the undo-engine policy defaults.
type UndoConfig struct {
	// HistoryDepth is the default 'undolevels': -1 disables undo
	// entirely, any value >= 0 is a literal bound on live headers.
	HistoryDepth int `conf:"undo.historydepth"`
	// ViCompatible toggles vi-compatible 'u' (undo/redo toggle between
	// the last two states) instead of linear undo.
	ViCompatible bool `conf:"undo.vicompatible"`
	// Dirs is the ordered list of undo-file directories (spec.md §6.3
	// get_undofile_path); "." means alongside the buffer itself.
	Dirs []string `conf:"undo.dirs"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.vundo
//	macOS:   ~/Library/Application Support/Vundo
//	Windows: %APPDATA%\Vundo
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vundo"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Vundo")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Vundo")
		}
		return filepath.Join(home, "AppData", "Roaming", "Vundo")
	default:
		return filepath.Join(home, ".vundo")
	}
}

// IndexDir returns the undo-file catalog database directory.
func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "index")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "vundo.conf")
}
