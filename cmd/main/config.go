package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/dummytext/pkg/markov"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted after the config file and before flags.
const (
	envLogLevel = "DUMMYTEXT_LOG_LEVEL"
	envStatsDB  = "DUMMYTEXT_STATS_DB"
)

// Config is the on-disk configuration of the generator. Any field may be
// overridden by a command-line flag.
type Config struct {
	MinVisits          int     `json:"min_visits" yaml:"min_visits"`
	MinRemaining       *int    `json:"min_remaining" yaml:"min_remaining"` // nil means same as MinVisits
	Length             int     `json:"length" yaml:"length"`
	GoBack             bool    `json:"go_back" yaml:"go_back"`
	Seed               *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	NormalizeThreshold int64   `json:"normalize_threshold" yaml:"normalize_threshold"`
	Validate           bool    `json:"validate" yaml:"validate"`
	LogLevel           string  `json:"log_level" yaml:"log_level"`
	StatsDB            string  `json:"stats_db" yaml:"stats_db"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		MinVisits:          markov.DefaultMinVisits,
		MinRemaining:       nil,
		Length:             1000,
		GoBack:             false,
		Seed:               nil,
		NormalizeThreshold: markov.DefaultNormalizeThreshold,
		Validate:           false,
		LogLevel:           "info",
		StatsDB:            "",
	}
}

// isYAML reports whether path should be read and written as YAML.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig reads the configuration from a JSON or YAML file, chosen by
// extension. An empty path yields the defaults. If the file doesn't exist, it
// is created with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			if isYAML(path) {
				data, err = yaml.Marshal(config)
			} else {
				data, err = json.MarshalIndent(config, "", "  ")
			}
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The defaults are still usable.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(file, config)
	} else {
		err = json.Unmarshal(file, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() {
	if v := os.Getenv(envLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(envStatsDB); v != "" {
		c.StatsDB = v
	}
}

// Markov returns the graph configuration described by c.
func (c *Config) Markov() markov.Config {
	minRemaining := c.MinVisits
	if c.MinRemaining != nil {
		minRemaining = *c.MinRemaining
	}
	return markov.Config{
		MinVisits:          c.MinVisits,
		MinRemaining:       minRemaining,
		ReturnToRoot:       c.GoBack,
		NormalizeThreshold: c.NormalizeThreshold,
	}
}

// Check validates the configuration before any input is read.
func (c *Config) Check() error {
	if err := c.Markov().Validate(); err != nil {
		return err
	}
	if c.Length < 0 {
		return fmt.Errorf("%w: length must not be negative, got %d", markov.ErrInvalidConfig, c.Length)
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

var errUnknownLogLevel = errors.New("unknown log level")

// parseLogLevel maps a level name to a slog.Level. An empty name means info.
func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", errUnknownLogLevel, name)
	}
}
