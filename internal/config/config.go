// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultThreshold mirrors the matcher's default so the config layer can fill
// it without importing the matching package.
const DefaultThreshold = 0.5

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Curriculum string `json:"curriculum,omitempty"` // Path to curriculum JSON
	Content    string `json:"content,omitempty"`    // Path to content inventory JSON
	Out        string `json:"out,omitempty"`        // Path to write the coverage report

	// Matching
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"` // Minimum score for a topic to count as covered
	Workers   int      `json:"workers,omitempty" validate:"gte=0,lte=256"`           // Concurrent subjects; 0 or 1 is sequential

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`                                        // Print the boxed summary
	LogLevel    string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat   string `json:"log_format,omitempty" validate:"omitempty,oneof=json console"`
	UseBrowser  bool   `json:"use_browser,omitempty"`                                    // Use headless browser for JS-rendered lesson pages
	DatabaseURL string `json:"database_url,omitempty" validate:"omitempty,startswith=postgres"` // PostgreSQL connection URL

	// Server
	Port int `json:"port,omitempty" validate:"gte=0,lte=65535"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required paths are not checked here; the CLI enforces them after merging flags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed '%s' check", jsonName(fe.StructField()), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}

	for field, path := range map[string]string{"curriculum": c.Curriculum, "content": c.Content} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", field, path)
		}
	}

	return nil
}

// ThresholdOrDefault returns the configured threshold or DefaultThreshold
func (c *Config) ThresholdOrDefault() float64 {
	if c.Threshold == nil {
		return DefaultThreshold
	}
	return *c.Threshold
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Curriculum == "" {
		result.Curriculum = defaults.Curriculum
	}
	if result.Content == "" {
		result.Content = defaults.Content
	}
	if result.Out == "" {
		result.Out = defaults.Out
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// A zero threshold is meaningful, so only an unset one is filled
	if result.Threshold == nil {
		if defaults.Threshold != nil {
			t := *defaults.Threshold
			result.Threshold = &t
		} else {
			t := DefaultThreshold
			result.Threshold = &t
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func jsonName(field string) string {
	switch field {
	case "LogLevel":
		return "log_level"
	case "LogFormat":
		return "log_format"
	case "DatabaseURL":
		return "database_url"
	default:
		return strings.ToLower(field)
	}
}
