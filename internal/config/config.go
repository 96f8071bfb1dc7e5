package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/antopolskiy/kanban-kbd/internal/clierr"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no kanban directory found (run 'kanban-kbd init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the kanban directory configuration.
type Config struct {
	Version      int           `yaml:"version" mapstructure:"version"`
	BoardsDir    string        `yaml:"boards_dir" mapstructure:"boards_dir"`
	SaveDebounce time.Duration `yaml:"save_debounce" mapstructure:"save_debounce"`
	Watch        bool          `yaml:"watch" mapstructure:"watch"`
	Log          LogConfig     `yaml:"log" mapstructure:"log"`
	TUI          TUIConfig     `yaml:"tui" mapstructure:"tui"`
	Keys         []KeyAlias    `yaml:"keys,omitempty" mapstructure:"keys"`

	// dir is the absolute path to the kanban directory (not serialized).
	dir string `yaml:"-"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	levels := make([]any, len(LogLevels))
	for i, l := range LogLevels {
		levels[i] = l
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.In(levels...)),
	)
}

// TUIConfig holds rendering preferences.
type TUIConfig struct {
	MaxCardLines int `yaml:"max_card_lines" mapstructure:"max_card_lines"`
	ColumnWidth  int `yaml:"column_width" mapstructure:"column_width"`
}

// Validate validates the TUI configuration.
func (c *TUIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxCardLines, validation.Required, validation.Min(1)),
		validation.Field(&c.ColumnWidth, validation.Required, validation.Min(minColumnWidth)),
	)
}

// KeyAlias maps a chord the terminal reports onto the chord the dispatcher
// understands. An empty To removes a built-in alias.
type KeyAlias struct {
	From string `yaml:"from" mapstructure:"from"`
	To   string `yaml:"to" mapstructure:"to"`
}

// Validate validates a single alias.
func (a KeyAlias) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.From, validation.Required),
	)
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version:      CurrentVersion,
		BoardsDir:    DefaultBoardsDir,
		SaveDebounce: DefaultSaveDebounce,
		Watch:        true,
		Log: LogConfig{
			Level: DefaultLogLevel,
			File:  DefaultLogFile,
		},
		TUI: TUIConfig{
			MaxCardLines: DefaultMaxCardLines,
			ColumnWidth:  DefaultColumnWidth,
		},
	}
}

// Dir returns the absolute path to the kanban directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the kanban directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// BoardsPath returns the absolute path to the boards directory.
func (c *Config) BoardsPath() string {
	if filepath.IsAbs(c.BoardsDir) {
		return c.BoardsDir
	}
	return filepath.Join(c.dir, c.BoardsDir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// LogPath returns the absolute path of the log file, or "" when logging is
// disabled.
func (c *Config) LogPath() string {
	if c.Log.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.dir, c.Log.File)
}

// Aliases returns the key alias table in the form keys.NewTranslator takes.
func (c *Config) Aliases() map[string]string {
	if len(c.Keys) == 0 {
		return nil
	}
	m := make(map[string]string, len(c.Keys))
	for _, a := range c.Keys {
		m[a.From] = a.To
	}
	return m
}

// Validate checks the config for errors. Every failure wraps ErrInvalid.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.BoardsDir, validation.Required),
		validation.Field(&c.SaveDebounce, validation.Min(time.Duration(0)), validation.Max(maxDebounce)),
		validation.Field(&c.Keys),
	); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("%w: log: %w", ErrInvalid, err)
	}
	if err := c.TUI.Validate(); err != nil {
		return fmt.Errorf("%w: tui: %w", ErrInvalid, err)
	}
	return nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.dir, dirMode); err != nil {
		return fmt.Errorf("creating kanban directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

func setDefaults(v *viper.Viper) {
	d := NewDefault()
	v.SetDefault("boards_dir", d.BoardsDir)
	v.SetDefault("save_debounce", d.SaveDebounce)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("tui.max_card_lines", d.TUI.MaxCardLines)
	v.SetDefault("tui.column_width", d.TUI.ColumnWidth)
}

// Load reads, migrates and validates the config in the given kanban
// directory. KANBAN_* environment variables override file values.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: parsing config: %w", ErrInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding config: %w", ErrInvalid, err)
	}
	cfg.dir = absDir

	if err := migrate(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindDir walks upward from startDir looking for a kanban directory
// containing config.yml. Returns the absolute path to the kanban directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the kanban directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.BoardNotFound, ErrNotFound.Error())
		}
		dir = parent
	}
}
