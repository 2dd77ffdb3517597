package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load missing config: %v", err)
	}
	if cfg.DBPath == "" || cfg.LogPath == "" {
		t.Errorf("defaults missing paths: %+v", cfg)
	}
	if !cfg.Reminders.Enabled || cfg.Reminders.WindowDays != 7 {
		t.Errorf("reminder defaults = %+v", cfg.Reminders)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`db_path: /tmp/test.db
user: alice
reminders:
  enabled: false
  window_days: 3
`)
	if err := os.WriteFile(path, yaml, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.User != "alice" {
		t.Errorf("user = %q", cfg.User)
	}
	if cfg.Reminders.Enabled {
		t.Error("reminders should be disabled")
	}
	if cfg.Reminders.WindowDays != 3 {
		t.Errorf("window days = %d", cfg.Reminders.WindowDays)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Reminders.IntervalSec != 3600 {
		t.Errorf("interval = %d, want default 3600", cfg.Reminders.IntervalSec)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := &AppConfig{
		DBPath:  "/data/hub.db",
		User:    "bob",
		LogPath: "/data/hub.log",
		Display: DisplayConfig{Theme: "default"},
		Reminders: ReminderConfig{
			Enabled: true, IntervalSec: 600, WindowDays: 5,
		},
	}

	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("save config: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if got.DBPath != want.DBPath || got.User != want.User || got.LogPath != want.LogPath {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.Reminders != want.Reminders {
		t.Errorf("reminders = %+v, want %+v", got.Reminders, want.Reminders)
	}
}
