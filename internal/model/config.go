package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// ReminderConfig controls the deadline reminder poller.
type ReminderConfig struct {
	// Enabled controls whether the reminder poller runs at all.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// IntervalSec is how often (in seconds) to scan for approaching deadlines.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`

	// WindowDays is how many days ahead a deadline counts as approaching.
	WindowDays int `mapstructure:"window_days" yaml:"window_days"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// DBPath is the SQLite database file location.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// User is the username of the worker operating this instance.
	User string `mapstructure:"user" yaml:"user"`

	// LogPath is where the application writes its log records.
	// Stdout belongs to the TUI, so logs always go to a file.
	LogPath string `mapstructure:"log_path" yaml:"log_path"`

	Display   DisplayConfig  `mapstructure:"display" yaml:"display"`
	Reminders ReminderConfig `mapstructure:"reminders" yaml:"reminders"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskhub/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskhub", "config.yaml")
}

// defaultDataDir returns the directory holding the database and log file.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "taskhub")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := defaultDataDir()
	return &AppConfig{
		DBPath:  filepath.Join(dir, "taskhub.db"),
		LogPath: filepath.Join(dir, "taskhub.log"),
		Display: DisplayConfig{Theme: "default"},
		Reminders: ReminderConfig{
			Enabled:     true,
			IntervalSec: 3600,
			WindowDays:  7,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	defaults := defaultAppConfig()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("log_path", defaults.LogPath)
	v.SetDefault("display.theme", defaults.Display.Theme)
	v.SetDefault("reminders.enabled", defaults.Reminders.Enabled)
	v.SetDefault("reminders.interval_sec", defaults.Reminders.IntervalSec)
	v.SetDefault("reminders.window_days", defaults.Reminders.WindowDays)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("db_path", cfg.DBPath)
	v.Set("user", cfg.User)
	v.Set("log_path", cfg.LogPath)
	v.Set("display", cfg.Display)
	v.Set("reminders", cfg.Reminders)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
