package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleScenario = `
name: crosswind-ascent
description: Full burn into a building crosswind with two gust fronts.
rocket:
  mass: 1200
  fuel: 180
  dragCoefficient: 0.6
initialWind: 2.0
wind:
  - at: 5.0
    speed: 6.0
  - at: 8.0
    gust: 4.0
  - at: 12.0
    speed: 3.0
    gust: 2.0
`

func TestParseScenario(t *testing.T) {
	scenario, err := ParseScenario([]byte(sampleScenario))
	if err != nil {
		t.Fatalf("ParseScenario() failed: %v", err)
	}

	if scenario.Name != "crosswind-ascent" {
		t.Errorf("Expected name 'crosswind-ascent', got '%s'", scenario.Name)
	}
	if scenario.Rocket.Mass != 1200 {
		t.Errorf("Expected rocket mass 1200, got %f", scenario.Rocket.Mass)
	}
	if scenario.InitialWind != 2.0 {
		t.Errorf("Expected initial wind 2.0, got %f", scenario.InitialWind)
	}
	if len(scenario.Wind) != 3 {
		t.Fatalf("Expected 3 wind events, got %d", len(scenario.Wind))
	}

	first := scenario.Wind[0]
	if first.At != 5.0 || first.Speed == nil || *first.Speed != 6.0 {
		t.Errorf("Expected speed event at 5.0s with speed 6.0, got %+v", first)
	}

	second := scenario.Wind[1]
	if second.Speed != nil {
		t.Error("Expected gust-only event to leave steady wind unset")
	}
	if second.Gust != 4.0 {
		t.Errorf("Expected gust 4.0, got %f", second.Gust)
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "Malformed YAML",
			doc:  "name: [unclosed",
		},
		{
			name: "Out of order timeline",
			doc: `
name: backwards
wind:
  - at: 10.0
    gust: 1.0
  - at: 5.0
    gust: 1.0
`,
		},
		{
			name: "Negative event time",
			doc: `
name: negative
wind:
  - at: -1.0
    gust: 1.0
`,
		},
		{
			name: "Non-finite wind",
			doc: `
name: nan-wind
initialWind: .nan
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.doc)); err == nil {
				t.Error("Expected error for invalid scenario, got nil")
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flight.yaml")
	if err := os.WriteFile(path, []byte(sampleScenario), 0o644); err != nil {
		t.Fatalf("Failed to write scenario file: %v", err)
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario() failed: %v", err)
	}
	if scenario.Name != "crosswind-ascent" {
		t.Errorf("Expected name 'crosswind-ascent', got '%s'", scenario.Name)
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing scenario file, got nil")
	}
}
