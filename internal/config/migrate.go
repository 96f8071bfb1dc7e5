package config

import "fmt"

// migrate upgrades a config from its stored version to CurrentVersion, one
// version at a time. Versions newer than this binary are rejected.
func migrate(cfg *Config) error {
	if cfg.Version == CurrentVersion {
		return nil
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf(
			"%w: config version %d is newer than supported version %d (upgrade kanban-kbd)",
			ErrInvalid, cfg.Version, CurrentVersion,
		)
	}
	if cfg.Version < 1 {
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	for cfg.Version < CurrentVersion {
		fn, ok := migrations[cfg.Version]
		if !ok {
			return fmt.Errorf("%w: no migration path from version %d", ErrInvalid, cfg.Version)
		}
		if err := fn(cfg); err != nil {
			return fmt.Errorf("migrating config from v%d: %w", cfg.Version, err)
		}
	}
	return nil
}

// migrations maps each version to the function that moves it one version
// forward. Each function must increment cfg.Version.
var migrations = map[int]func(*Config) error{
	1: migrateV1ToV2,
}

// migrateV1ToV2 introduces the key alias table and the tui section. Version 1
// files wrote a zero column width, which now means "use the default".
func migrateV1ToV2(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.TUI.ColumnWidth == 0 {
		cfg.TUI.ColumnWidth = DefaultColumnWidth
	}
	if cfg.TUI.MaxCardLines == 0 {
		cfg.TUI.MaxCardLines = DefaultMaxCardLines
	}
	cfg.Version = 2
	return nil
}
