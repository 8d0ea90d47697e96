// Package config provides configuration loading for the generation pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/pipeline"
)

// Config is the structure of the streamsuite.yaml file. Every section is
// optional; absent sections fall back to compiled-in defaults.
type Config struct {
	Triggers models.TriggerMatcher `yaml:"triggers"`
	Pricing  ledger.Pricing        `yaml:"pricing"`
	Limits   pipeline.PlanLimits   `yaml:"limits"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Triggers: *models.DefaultTriggerMatcher(),
		Pricing:  *ledger.DefaultPricing(),
		Limits:   pipeline.DefaultPlanLimits(),
	}
}

// Load reads configuration from a YAML file. Sections left empty in the file
// keep their defaults.
func Load(filepath string) (Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	applyDefaults(&config)

	return config, nil
}

// LoadOrDefault attempts to load configuration from a file, falling back to
// the compiled-in defaults if the file doesn't exist or doesn't parse.
func LoadOrDefault(filepath string) Config {
	config, err := Load(filepath)
	if err != nil {
		return Default()
	}

	return config
}

// applyDefaults fills sections the YAML file zeroed out. yaml.Unmarshal
// overwrites pre-populated slices with empty ones when the key is present
// but empty, so list defaults are restored here.
func applyDefaults(config *Config) {
	defaults := Default()

	if len(config.Triggers.Types) == 0 {
		config.Triggers.Types = defaults.Triggers.Types
	}

	if len(config.Triggers.Markers) == 0 {
		config.Triggers.Markers = defaults.Triggers.Markers
	}

	if len(config.Pricing.ComplexityMarkers) == 0 {
		config.Pricing.ComplexityMarkers = defaults.Pricing.ComplexityMarkers
	}
}

// Validate checks that the configuration is internally consistent.
func Validate(config Config) error {
	if len(config.Triggers.Types) == 0 {
		return fmt.Errorf("triggers: at least one trigger type is required")
	}

	if config.Pricing.SingleBaseCost < 1 {
		return fmt.Errorf("pricing: single_base_cost must be at least 1")
	}

	if config.Pricing.EnterpriseBaseCost < config.Pricing.SingleBaseCost {
		return fmt.Errorf("pricing: enterprise_base_cost must be >= single_base_cost")
	}

	if config.Pricing.MaxEstimate < config.Pricing.EnterpriseBaseCost {
		return fmt.Errorf("pricing: max_estimate must be >= enterprise_base_cost")
	}

	if config.Pricing.TokensPerCredit < 1 {
		return fmt.Errorf("pricing: tokens_per_credit must be at least 1")
	}

	if config.Pricing.LowBalanceThreshold < 0 {
		return fmt.Errorf("pricing: low_balance_threshold must not be negative")
	}

	if config.Limits.BatchMaxArtifacts < 1 {
		return fmt.Errorf("limits: batch_max_artifacts must be at least 1")
	}

	if config.Limits.EnterpriseMaxArtifacts < config.Limits.BatchMaxArtifacts {
		return fmt.Errorf("limits: enterprise_max_artifacts must be >= batch_max_artifacts")
	}

	return nil
}
