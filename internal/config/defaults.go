// Package config handles kanban board configuration.
package config

import "time"

// Default values for a new board directory.
var (
	DefaultDir       = ".kanban"
	DefaultBoardsDir = "boards"

	DefaultSaveDebounce = 300 * time.Millisecond
	DefaultLogLevel     = "info"
	DefaultLogFile      = "kanban.log"

	DefaultMaxCardLines = 6
	DefaultColumnWidth  = 28
)

// LogLevels lists the accepted log.level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

const (
	// ConfigFileName is the name of the config file within the kanban directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 2

	// EnvPrefix prefixes environment overrides, e.g. KANBAN_LOG_LEVEL.
	EnvPrefix = "KANBAN"

	minColumnWidth = 12
	maxDebounce    = 10 * time.Second
)
