// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/spf13/viper"
)

// Config is the materialized application configuration.
type Config struct {
	Location        *time.Location
	DatabasePath    string
	LogLevel        string
	LogFormat       string
	Timezone        string
	Workers         int
	DuplicateWindow time.Duration
	SkipDuplicates  bool
}

// Default values.
const (
	DefaultDatabasePath    = "~/.local/share/smsledger/ledger.db"
	DefaultTimezone        = "Local"
	DefaultDuplicateWindow = 10 * time.Minute
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("parser.timezone", DefaultTimezone)
	v.SetDefault("import.workers", runtime.NumCPU())
	v.SetDefault("import.duplicate_window", DefaultDuplicateWindow)
	v.SetDefault("import.skip_duplicates", false)
}

// Load materializes a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath:    ExpandPath(v.GetString("database.path")),
		LogLevel:        v.GetString("logging.level"),
		LogFormat:       v.GetString("logging.format"),
		Timezone:        v.GetString("parser.timezone"),
		Workers:         v.GetInt("import.workers"),
		DuplicateWindow: v.GetDuration("import.duplicate_window"),
		SkipDuplicates:  v.GetBool("import.skip_duplicates"),
	}

	if strings.TrimSpace(cfg.DatabasePath) == "" {
		return nil, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("%w: import.workers must be positive, got %d", common.ErrInvalidConfig, cfg.Workers)
	}
	if cfg.DuplicateWindow < 0 {
		return nil, fmt.Errorf("%w: import.duplicate_window must not be negative", common.ErrInvalidConfig)
	}

	loc, err := LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	return cfg, nil
}

// LoadLocation resolves a configured time zone name. Empty and "Local" mean
// the host's zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: parser.timezone %q: %v", common.ErrInvalidConfig, name, err)
	}
	return loc, nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
