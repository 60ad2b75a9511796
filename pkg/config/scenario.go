// pkg/config/scenario.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-rocketsim/pkg/rocket"
	"github.com/opd-ai/go-rocketsim/pkg/validation"
)

// Scenario describes a scripted flight: a rocket preset plus a timeline of
// wind changes the engine applies as flight time passes. Scenarios are YAML
// documents so presets can be hand-edited and shared.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Rocket      rocket.Config `yaml:"rocket"`
	InitialWind float64       `yaml:"initialWind"` // m/s, applied before launch
	Wind        []WindEvent   `yaml:"wind"`
}

// WindEvent is one entry in the scenario wind timeline. Speed is a pointer
// so a gust-only event leaves the steady wind alone.
type WindEvent struct {
	At    float64  `yaml:"at"` // flight time, seconds
	Speed *float64 `yaml:"speed,omitempty"`
	Gust  float64  `yaml:"gust,omitempty"`
}

// LoadScenario loads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a YAML scenario document and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// Validate checks the scenario for values the engine cannot apply: the
// wind timeline must be ordered by time and every number finite.
func (s *Scenario) Validate() error {
	if err := validation.ValidateWindSpeed(s.InitialWind); err != nil {
		return err
	}

	lastAt := 0.0
	for i, ev := range s.Wind {
		if err := validation.FiniteNonNegative(fmt.Sprintf("wind[%d].at", i), ev.At); err != nil {
			return err
		}
		if ev.At < lastAt {
			return fmt.Errorf("wind timeline out of order: event %d at %.2fs follows %.2fs", i, ev.At, lastAt)
		}
		lastAt = ev.At

		if ev.Speed != nil {
			if err := validation.ValidateWindSpeed(*ev.Speed); err != nil {
				return fmt.Errorf("wind[%d]: %w", i, err)
			}
		}
		if err := validation.ValidateWindSpeed(ev.Gust); err != nil {
			return fmt.Errorf("wind[%d] gust: %w", i, err)
		}
	}
	return nil
}
