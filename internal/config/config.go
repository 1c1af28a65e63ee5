// Package config handles YAML scenario parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"volley/internal/check"
	"volley/internal/collector"
)

// Scenario is a complete run description loaded from a YAML file.
// Command-line flags override any value set here.
type Scenario struct {
	URL        string                `yaml:"url"`
	Requests   int                   `yaml:"requests"`
	Window     float64               `yaml:"window"` // seconds
	Timeout    time.Duration         `yaml:"timeout,omitempty"`
	Checks     []check.Check         `yaml:"checks,omitempty"`
	Thresholds *collector.Thresholds `yaml:"thresholds,omitempty"`
}

// Load reads and parses a YAML scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if err := s.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	return &s, nil
}
