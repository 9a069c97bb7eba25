package edinet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes the extraction heuristics.
type Config struct {
	// ScoreThreshold is the minimum classifier score for a table to count
	// as a financial statement. Zero uses DefaultScoreThreshold.
	ScoreThreshold int `yaml:"score_threshold"`

	// MaxTables caps the number of mapped tables per document. Zero means
	// no cap.
	MaxTables int `yaml:"max_tables"`

	// ExtractComments enables the annotation-section path.
	ExtractComments bool `yaml:"extract_comments"`

	// AnchorDate (YYYY-MM-DD) pins the fiscal-year classification anchor
	// instead of the wall clock. Fixtures and replays of old filings need
	// this; see ContextResolver.
	AnchorDate string `yaml:"anchor_date"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		ScoreThreshold:  DefaultScoreThreshold,
		ExtractComments: true,
	}
}

// LoadConfig reads a yaml configuration file, filling unset fields from
// DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ScoreThreshold < 0 {
		return fmt.Errorf("score_threshold must not be negative, got %d", c.ScoreThreshold)
	}
	if c.MaxTables < 0 {
		return fmt.Errorf("max_tables must not be negative, got %d", c.MaxTables)
	}
	if c.AnchorDate != "" {
		if c.anchorNow() == nil {
			return fmt.Errorf("anchor_date must be YYYY-MM-DD, got %q", c.AnchorDate)
		}
	}
	return nil
}
