package config

import (
	"errors"
	"testing"
)

func TestMigrateCurrentVersionNoop(t *testing.T) {
	cfg := NewDefault()
	if err := migrate(cfg); err != nil {
		t.Errorf("migrate() current version: %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
}

func TestMigrateRejectsOutOfRange(t *testing.T) {
	for _, v := range []int{-1, 0, CurrentVersion + 1} {
		cfg := NewDefault()
		cfg.Version = v
		if err := migrate(cfg); !errors.Is(err, ErrInvalid) {
			t.Errorf("migrate(v%d) error = %v, want ErrInvalid", v, err)
		}
	}
}

func TestMigrateV1FillsTUIDefaults(t *testing.T) {
	cfg := NewDefault()
	cfg.Version = 1
	cfg.TUI = TUIConfig{}

	if err := migrate(cfg); err != nil {
		t.Fatalf("migrate() error: %v", err)
	}
	if cfg.TUI.ColumnWidth != DefaultColumnWidth || cfg.TUI.MaxCardLines != DefaultMaxCardLines {
		t.Errorf("TUI = %+v, want defaults", cfg.TUI)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after migration: %v", err)
	}
}
