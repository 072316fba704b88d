// Package config handles tickdown.yaml parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tickdown/tickdown-go/internal/applog"
	"github.com/tickdown/tickdown-go/pkg/persistence"
)

// EnvDataDir overrides Config.DataDir when set.
const EnvDataDir = "TICKDOWN_DATA_DIR"

// DefaultFileName is the config file looked up when no path is given.
const DefaultFileName = "tickdown.yaml"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// sqliteFileName is the database file inside DataDir for the sqlite backend.
const sqliteFileName = "timers.db"

// Config represents a tickdown.yaml file.
type Config struct {
	// DataDir holds the persisted timer records.
	DataDir string `yaml:"data_dir,omitempty"`

	// Backend selects the store: file, sqlite or memory.
	Backend string `yaml:"backend,omitempty"`

	// TickInterval is the wait between two decrements.
	TickInterval time.Duration `yaml:"tick_interval,omitempty"`

	// EventLog is an optional path for the CBOR event trace.
	EventLog string `yaml:"event_log,omitempty"`

	Log    LogConfig     `yaml:"log,omitempty"`
	Timers []TimerConfig `yaml:"timers,omitempty"`
}

// LogConfig configures application logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// TimerConfig declares a named timer and its default length.
type TimerConfig struct {
	Key      string        `yaml:"key"`
	Duration time.Duration `yaml:"duration"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DataDir:      DefaultDataDir(),
		Backend:      BackendFile,
		TickInterval: time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: applog.FormatAuto,
		},
	}
}

// DefaultDataDir returns <UserConfigDir>/tickdown/TimersData, falling back
// to the working directory when no user config dir is known.
func DefaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "tickdown", "TimersData")
}

// Parse parses YAML bytes on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		c.DataDir = dir
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("backend: unknown value %q (want file, sqlite or memory)", c.Backend))
	}
	if c.Backend != BackendMemory && c.DataDir == "" {
		errs = append(errs, errors.New("data_dir: required"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval: must be positive, got %v", c.TickInterval))
	}
	if _, err := applog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", applog.FormatAuto, applog.FormatConsole, applog.FormatDev, applog.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown value %q", c.Log.Format))
	}

	seen := make(map[string]bool)
	for i, t := range c.Timers {
		if err := persistence.ValidateKey(t.Key); err != nil {
			errs = append(errs, fmt.Errorf("timers[%d].key: %w", i, err))
			continue
		}
		if seen[t.Key] {
			errs = append(errs, fmt.Errorf("timers[%d].key: duplicate %q", i, t.Key))
		}
		seen[t.Key] = true
		if t.Duration <= 0 {
			errs = append(errs, fmt.Errorf("timers[%d].duration: must be positive", i))
		}
	}

	return errors.Join(errs...)
}

// Timer returns the declared timer with key.
func (c *Config) Timer(key string) (TimerConfig, bool) {
	for _, t := range c.Timers {
		if t.Key == key {
			return t, true
		}
	}
	return TimerConfig{}, false
}

// OpenStore opens the configured persistence backend.
func (c *Config) OpenStore() (persistence.Store, error) {
	switch c.Backend {
	case BackendFile, "":
		return persistence.NewFileStore(c.DataDir)
	case BackendSQLite:
		if err := os.MkdirAll(c.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		return persistence.OpenSQLiteStore(filepath.Join(c.DataDir, sqliteFileName))
	case BackendMemory:
		return persistence.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
}
