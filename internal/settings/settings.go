// Package settings provides mcpm's own runtime settings using Viper:
// lock timeout, backup directory and retention, and health check
// timeout. These are the only knobs the configuration core consumes
// from the environment.
package settings

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpm/internal/paths"
)

// AppName is the application name used for settings file naming.
const AppName = "mcpm"

// Defaults.
const (
	DefaultLockTimeout    = 5 * time.Second
	DefaultBackupKeep     = 5
	DefaultHealthTimeout  = 10 * time.Second
	DefaultBackupListSize = 10
)

// Settings is the top-level settings structure.
type Settings struct {
	// LockTimeout bounds advisory lock acquisition.
	LockTimeout time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"`

	// BackupDir is the snapshot directory.
	BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir"`

	// BackupKeep is the default retention count for prune.
	BackupKeep int `mapstructure:"backup_keep" yaml:"backup_keep"`

	// HealthTimeout bounds health check probes.
	HealthTimeout time.Duration `mapstructure:"health_timeout" yaml:"health_timeout"`
}

// Init initializes Viper with defaults and environment binding.
// Call once at application startup before Load.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(paths.SettingsDir())

	viper.SetEnvPrefix("MCPM")
	viper.AutomaticEnv()

	viper.SetDefault("lock_timeout", DefaultLockTimeout)
	viper.SetDefault("backup_dir", paths.BackupDir())
	viper.SetDefault("backup_keep", DefaultBackupKeep)
	viper.SetDefault("health_timeout", DefaultHealthTimeout)
}

// Load reads the settings file if one exists and returns the resolved
// settings. A missing file is not an error; defaults and environment
// values apply.
func Load() (*Settings, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}

	if s.LockTimeout <= 0 {
		s.LockTimeout = DefaultLockTimeout
	}
	if s.BackupKeep <= 0 {
		s.BackupKeep = DefaultBackupKeep
	}
	if s.HealthTimeout <= 0 {
		s.HealthTimeout = DefaultHealthTimeout
	}
	if s.BackupDir == "" {
		s.BackupDir = paths.BackupDir()
	}

	return &s, nil
}
