// Package validation provides input validation for simulation step inputs,
// rocket configuration, and command messages arriving from telemetry clients.
// The integrator itself assumes well-formed numbers, so every external entry
// point routes its inputs through this package first.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Command message limits for the telemetry command surface.
const (
	MaxCommandSize    = 4 * 1024 // 4KB max command message
	MaxCommandsPerMin = 120
)

// Finite checks that a value is neither NaN nor infinite.
func Finite(name string, value float64) error {
	if math.IsNaN(value) {
		return fmt.Errorf("%s must not be NaN", name)
	}
	if math.IsInf(value, 0) {
		return fmt.Errorf("%s must be finite, got %v", name, value)
	}
	return nil
}

// FiniteNonNegative checks that a value is finite and not negative.
func FiniteNonNegative(name string, value float64) error {
	if err := Finite(name, value); err != nil {
		return err
	}
	if value < 0 {
		return fmt.Errorf("%s must not be negative, got %v", name, value)
	}
	return nil
}

// ValidateStepInput validates the per-step integrator inputs. Rejecting
// degenerate values here keeps NaN out of the flight state instead of
// letting it propagate silently through every later step.
func ValidateStepInput(dt, throttle float64) error {
	if err := FiniteNonNegative("time step", dt); err != nil {
		return err
	}
	if err := FiniteNonNegative("throttle", throttle); err != nil {
		return err
	}
	return nil
}

// ValidateWindSpeed validates a steady wind speed or gust magnitude.
// Negative values are allowed (wind blowing in -x), non-finite are not.
func ValidateWindSpeed(speed float64) error {
	return Finite("wind speed", speed)
}

// CommandValidator provides validation for command messages received from
// telemetry clients, with per-client rate limiting.
type CommandValidator struct {
	rateLimiter *RateLimiter
}

// NewCommandValidator creates a new command validator with rate limiting.
func NewCommandValidator() *CommandValidator {
	return &CommandValidator{
		rateLimiter: NewRateLimiter(MaxCommandsPerMin, time.Minute),
	}
}

// Close releases resources used by the command validator
func (v *CommandValidator) Close() {
	if v.rateLimiter != nil {
		v.rateLimiter.Close()
	}
}

// ValidateCommand validates a raw command message against size and format
// constraints before it is decoded.
func (v *CommandValidator) ValidateCommand(data []byte, clientID string) error {
	if len(data) > MaxCommandSize {
		return fmt.Errorf("command too large: %d bytes (max %d)", len(data), MaxCommandSize)
	}

	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON format")
	}

	if !v.rateLimiter.Allow(clientID) {
		return fmt.Errorf("rate limit exceeded: max %d commands per minute", MaxCommandsPerMin)
	}

	return nil
}
