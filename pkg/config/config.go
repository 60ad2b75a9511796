// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/opd-ai/go-rocketsim/pkg/rocket"
	"github.com/opd-ai/go-rocketsim/pkg/validation"
)

// SimConfig contains configuration for a simulation run
type SimConfig struct {
	Rocket  rocket.Config `json:"rocket"`
	Wind    WindConfig    `json:"wind"`
	Loop    LoopConfig    `json:"loop"`
	Network NetworkConfig `json:"network"`
}

// WindConfig contains the initial wind environment
type WindConfig struct {
	Speed float64 `json:"speed"` // steady horizontal wind, m/s
}

// LoopConfig contains simulation loop configuration
type LoopConfig struct {
	TickRate       int `json:"tickRate"`       // integration steps per second
	TelemetryEvery int `json:"telemetryEvery"` // broadcast a snapshot every N ticks
}

// NetworkConfig contains network-related configuration
type NetworkConfig struct {
	ListenAddr string `json:"listenAddr"`
	UplinkURL  string `json:"uplinkURL"` // optional ground-station collector, empty disables
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config SimConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SimConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects configurations that would poison the flight state.
// Zero values are fine everywhere (they resolve to defaults downstream);
// NaN, infinities, and negatives are not.
func (c *SimConfig) Validate() error {
	fields := map[string]float64{
		"rocket.mass":            c.Rocket.Mass,
		"rocket.thrust":          c.Rocket.Thrust,
		"rocket.fuel":            c.Rocket.Fuel,
		"rocket.consumptionRate": c.Rocket.ConsumptionRate,
		"rocket.radius":          c.Rocket.Radius,
		"rocket.height":          c.Rocket.Height,
		"rocket.dragCoefficient": c.Rocket.DragCoefficient,
	}
	for name, value := range fields {
		if err := validation.FiniteNonNegative(name, value); err != nil {
			return err
		}
	}
	if err := validation.ValidateWindSpeed(c.Wind.Speed); err != nil {
		return err
	}
	if c.Loop.TickRate < 0 {
		return fmt.Errorf("loop.tickRate must not be negative, got %d", c.Loop.TickRate)
	}
	if c.Loop.TelemetryEvery < 0 {
		return fmt.Errorf("loop.telemetryEvery must not be negative, got %d", c.Loop.TelemetryEvery)
	}
	return nil
}

// applyDefaults resolves zero loop and network settings to the default
// cadence and listen address, matching the zero-as-unset handling of
// rocket.Config. A config file that omits these sections still produces a
// runnable configuration.
func (c *SimConfig) applyDefaults() {
	if c.Loop.TickRate == 0 {
		c.Loop.TickRate = 60
	}
	if c.Loop.TelemetryEvery == 0 {
		c.Loop.TelemetryEvery = 6
	}
	if c.Network.ListenAddr == "" {
		c.Network.ListenAddr = "localhost:4810"
	}
}

// DefaultConfig returns a default simulation configuration
func DefaultConfig() *SimConfig {
	return &SimConfig{
		Rocket: rocket.Config{
			Mass:            rocket.DefaultDryMass,
			Thrust:          rocket.DefaultThrustScale,
			Fuel:            rocket.DefaultMaxFuel,
			ConsumptionRate: rocket.DefaultConsumptionRate,
			Radius:          rocket.DefaultRadius,
			Height:          rocket.DefaultHeight,
			DragCoefficient: rocket.DefaultDragCoefficient,
		},
		Wind: WindConfig{
			Speed: 0,
		},
		Loop: LoopConfig{
			TickRate:       60,
			TelemetryEvery: 6, // 10 snapshots per second at the default rate
		},
		Network: NetworkConfig{
			ListenAddr: "localhost:4810",
			UplinkURL:  "",
		},
	}
}
