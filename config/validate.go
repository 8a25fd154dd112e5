package config

import (
	"fmt"
)

// Validate checks config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Undo.HistoryDepth < -1 {
		return fmt.Errorf("undo.historydepth must be >= -1 (-1 disables undo), got %d", cfg.Undo.HistoryDepth)
	}
	if len(cfg.Undo.Dirs) == 0 {
		return fmt.Errorf("undo.dirs must list at least one directory")
	}
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}
