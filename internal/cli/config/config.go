package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// File names searched for when no config file is given
var fileNames = []string{"entitykit.yml", "entitykit.yaml"}

// Config represents the entitykit configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Sections SectionsConfig `mapstructure:"sections"`
	Output   OutputConfig   `mapstructure:"output"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SectionsConfig selects the concrete section type registered for decoding
type SectionsConfig struct {
	Default string `mapstructure:"default"`
}

// OutputConfig represents CLI output configuration
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// Section types
const (
	SectionsStandard = "standard"
	SectionsPremium  = "premium"
)

// Premium reports whether premium sections are the configured default
func (c *Config) Premium() bool {
	return c.Sections.Default == SectionsPremium
}

// Load loads the configuration from path, or from entitykit.yml or entitykit.yaml found
// in the working directory or one of its parents when path is empty. Environment
// variables prefixed with ENTITYKIT_ override file values, e.g. ENTITYKIT_LOG_LEVEL.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)
	v.SetDefault("sections.default", SectionsStandard)
	v.SetDefault("output.format", "json")
	v.SetDefault("output.color", true)

	v.SetConfigType("yaml")
	if path == "" {
		if found, err := FindConfigFile(); err == nil {
			path = found
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix("ENTITYKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ErrNoConfigFile is returned when no config file exists in the working directory or
// any of its parents
var ErrNoConfigFile = errors.New("no entitykit.yml found")

// FindConfigFile looks for entitykit.yml or entitykit.yaml in the working directory,
// then in each parent directory
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range fileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfigFile
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got: %s", cfg.Log.Level)
	}

	switch cfg.Sections.Default {
	case SectionsStandard, SectionsPremium:
	default:
		return fmt.Errorf("sections.default must be %q or %q, got: %s", SectionsStandard, SectionsPremium, cfg.Sections.Default)
	}

	switch cfg.Output.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("output.format must be json or yaml, got: %s", cfg.Output.Format)
	}
	return nil
}
