// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Gateway
	Provider    string  `json:"provider,omitempty" validate:"omitempty,oneof=openai gemini"` // LLM provider
	Model       string  `json:"model,omitempty"`                                             // Model name override
	Temperature float64 `json:"temperature,omitempty" validate:"gte=0,lte=2"`                // Sampling temperature

	// Paths
	WikiDir    string `json:"wiki_dir,omitempty"`    // Directory holding wiki articles
	ReadmePath string `json:"readme,omitempty"`      // README location
	ResultsDir string `json:"results_dir,omitempty"` // Where cycle artifacts are saved
	RubricPath string `json:"rubric,omitempty"`      // Optional custom rubric YAML

	// Cycle behavior
	MaxIterations  int     `json:"max_iterations,omitempty" validate:"gte=0"`            // Improvement iteration cap
	MinImprovement float64 `json:"min_improvement,omitempty"`                            // Plateau threshold
	TargetScore    int     `json:"target_score,omitempty" validate:"gte=0,lte=100"`      // Stop once reached
	Workers        int     `json:"workers,omitempty" validate:"gte=0"`                   // Batch evaluation concurrency

	// Output
	Verbose bool `json:"verbose,omitempty"` // Print detailed progress information
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
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
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: field %q fails constraint %q", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.RubricPath != "" {
		if _, err := os.Stat(c.RubricPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: rubric file not found: %s", c.RubricPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.WikiDir == "" {
		result.WikiDir = defaults.WikiDir
	}
	if result.ReadmePath == "" {
		result.ReadmePath = defaults.ReadmePath
	}
	if result.ResultsDir == "" {
		result.ResultsDir = defaults.ResultsDir
	}
	if result.RubricPath == "" {
		result.RubricPath = defaults.RubricPath
	}

	// Numeric fields: use default if zero
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.MaxIterations == 0 {
		result.MaxIterations = defaults.MaxIterations
	}
	if result.MinImprovement == 0 {
		result.MinImprovement = defaults.MinImprovement
	}
	if result.TargetScore == 0 {
		result.TargetScore = defaults.TargetScore
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
