// pkg/config/env_config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvironmentConfig holds deployment settings sourced from environment
// variables. File-based SimConfig describes the flight; this describes
// where and how the simulator process runs.
type EnvironmentConfig struct {
	ListenAddr     string
	TickRate       int
	TelemetryEvery int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// Ground-station uplink
	UplinkURL string

	// Circuit Breaker Configuration
	CircuitBreakerMaxRequests         int
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails int

	// Resource Management
	MaxMemoryMB           int64
	MaxGoroutines         int
	ResourceCheckInterval time.Duration

	// Shutdown
	ShutdownTimeout time.Duration
}

// LoadConfigFromEnv builds an EnvironmentConfig from ROCKETSIM_* environment
// variables, falling back to safe defaults for anything unset.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	cfg := &EnvironmentConfig{}
	var err error

	cfg.ListenAddr = getEnvOrDefault("ROCKETSIM_LISTEN_ADDR", "localhost:4810")
	cfg.UplinkURL = getEnvOrDefault("ROCKETSIM_UPLINK_URL", "")

	if cfg.TickRate, err = getEnvIntOrDefault("ROCKETSIM_TICK_RATE", 60); err != nil {
		return nil, err
	}
	if cfg.TelemetryEvery, err = getEnvIntOrDefault("ROCKETSIM_TELEMETRY_EVERY", 6); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = getEnvDurationOrDefault("ROCKETSIM_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = getEnvDurationOrDefault("ROCKETSIM_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerMaxRequests, err = getEnvIntOrDefault("ROCKETSIM_CB_MAX_REQUESTS", 3); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerInterval, err = getEnvDurationOrDefault("ROCKETSIM_CB_INTERVAL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerTimeout, err = getEnvDurationOrDefault("ROCKETSIM_CB_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerMaxConsecutiveFails, err = getEnvIntOrDefault("ROCKETSIM_CB_MAX_CONSECUTIVE_FAILS", 5); err != nil {
		return nil, err
	}
	var maxMemoryMB int
	if maxMemoryMB, err = getEnvIntOrDefault("ROCKETSIM_MAX_MEMORY_MB", 512); err != nil {
		return nil, err
	}
	cfg.MaxMemoryMB = int64(maxMemoryMB)
	if cfg.MaxGoroutines, err = getEnvIntOrDefault("ROCKETSIM_MAX_GOROUTINES", 1000); err != nil {
		return nil, err
	}
	if cfg.ResourceCheckInterval, err = getEnvDurationOrDefault("ROCKETSIM_RESOURCE_CHECK_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDurationOrDefault("ROCKETSIM_SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects environment values that would break the run loop.
func (c *EnvironmentConfig) validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("ROCKETSIM_TICK_RATE must be positive, got %d", c.TickRate)
	}
	if c.TelemetryEvery <= 0 {
		return fmt.Errorf("ROCKETSIM_TELEMETRY_EVERY must be positive, got %d", c.TelemetryEvery)
	}
	if c.CircuitBreakerMaxConsecutiveFails <= 0 {
		return fmt.Errorf("ROCKETSIM_CB_MAX_CONSECUTIVE_FAILS must be positive, got %d", c.CircuitBreakerMaxConsecutiveFails)
	}
	if c.MaxMemoryMB <= 0 {
		return fmt.Errorf("ROCKETSIM_MAX_MEMORY_MB must be positive, got %d", c.MaxMemoryMB)
	}
	if c.MaxGoroutines <= 0 {
		return fmt.Errorf("ROCKETSIM_MAX_GOROUTINES must be positive, got %d", c.MaxGoroutines)
	}
	return nil
}

// ApplyEnvironmentOverrides overlays environment-derived settings onto a
// file-based SimConfig. Environment wins where both are set.
func ApplyEnvironmentOverrides(config *SimConfig) error {
	envConfig, err := LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment configuration: %w", err)
	}

	if addr := os.Getenv("ROCKETSIM_LISTEN_ADDR"); addr != "" {
		config.Network.ListenAddr = addr
	}
	if url := os.Getenv("ROCKETSIM_UPLINK_URL"); url != "" {
		config.Network.UplinkURL = url
	}
	if os.Getenv("ROCKETSIM_TICK_RATE") != "" {
		config.Loop.TickRate = envConfig.TickRate
	}
	if os.Getenv("ROCKETSIM_TELEMETRY_EVERY") != "" {
		config.Loop.TelemetryEvery = envConfig.TelemetryEvery
	}
	if os.Getenv("ROCKETSIM_WIND_SPEED") != "" {
		speed, err := getEnvFloatOrDefault("ROCKETSIM_WIND_SPEED", config.Wind.Speed)
		if err != nil {
			return err
		}
		config.Wind.Speed = speed
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault parses an integer environment variable or returns a default.
func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, value)
	}
	return parsed, nil
}

// getEnvDurationOrDefault parses a duration environment variable or returns a default.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s: %q", key, value)
	}
	return parsed, nil
}

// getEnvFloatOrDefault parses a float environment variable or returns a default.
func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value for %s: %q", key, value)
	}
	return parsed, nil
}
