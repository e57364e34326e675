package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/hamster/config.yaml"

// Config holds all hamster configuration.
type Config struct {
	Tracking     TrackingConfig     `yaml:"tracking"`
	Storage      StorageConfig      `yaml:"storage"`
	Autocomplete AutocompleteConfig `yaml:"autocomplete"`
	Logging      LoggingConfig      `yaml:"logging"`
}

type TrackingConfig struct {
	// DayStart is the clock time (HH:MM:SS) at which a tracking day begins.
	DayStart string `yaml:"day_start"`
	// FactMinDelta is the minimal duration in minutes a stopped fact needs
	// to be saved.
	FactMinDelta int `yaml:"fact_min_delta"`
}

type StorageConfig struct {
	Store       string `yaml:"store"`
	DBEngine    string `yaml:"db_engine"`
	DBPath      string `yaml:"db_path"`
	TmpfilePath string `yaml:"tmpfile_path"`
}

type AutocompleteConfig struct {
	// ActivitiesRange limits suggestions to activities used in the last N
	// days. Zero means no limit.
	ActivitiesRange int  `yaml:"activities_range"`
	SplitActivity   bool `yaml:"split_activity"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DayStartOffset returns DayStart as an offset from midnight.
func (t TrackingConfig) DayStartOffset() (time.Duration, error) {
	clock, err := time.Parse("15:04:05", t.DayStart)
	if err != nil {
		return 0, fmt.Errorf("invalid day_start %q: expected HH:MM:SS", t.DayStart)
	}
	return time.Duration(clock.Hour())*time.Hour +
		time.Duration(clock.Minute())*time.Minute +
		time.Duration(clock.Second())*time.Second, nil
}

// MinDelta returns FactMinDelta as a duration.
func (t TrackingConfig) MinDelta() time.Duration {
	return time.Duration(t.FactMinDelta) * time.Minute
}

// DatabasePath returns db_path with a leading ~ expanded.
func (s StorageConfig) DatabasePath() (string, error) {
	return ExpandPath(s.DBPath)
}

// OngoingPath returns tmpfile_path with a leading ~ expanded.
func (s StorageConfig) OngoingPath() (string, error) {
	return ExpandPath(s.TmpfilePath)
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return expanded, nil
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return Load(path)
}

// Save writes the config to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
