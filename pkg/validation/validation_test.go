package validation

import (
	"bytes"
	"math"
	"testing"
)

func TestFinite(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 42.5, false},
		{"negative", -3.2, false},
		{"NaN", math.NaN(), true},
		{"positive infinity", math.Inf(1), true},
		{"negative infinity", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Finite("value", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Finite(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestFiniteNonNegative(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 1.5, false},
		{"negative", -0.001, true},
		{"NaN", math.NaN(), true},
		{"infinity", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FiniteNonNegative("value", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("FiniteNonNegative(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStepInput(t *testing.T) {
	tests := []struct {
		name     string
		dt       float64
		throttle float64
		wantErr  bool
	}{
		{"valid inputs", 0.016, 0.5, false},
		{"zero dt", 0, 1, false},
		{"negative dt", -0.01, 0.5, true},
		{"NaN dt", math.NaN(), 0.5, true},
		{"negative throttle", 0.016, -0.1, true},
		{"infinite throttle", 0.016, math.Inf(1), true},
		{"throttle above one allowed", 0.016, 2.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStepInput(tt.dt, tt.throttle)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStepInput(%v, %v) error = %v, wantErr %v", tt.dt, tt.throttle, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWindSpeed(t *testing.T) {
	if err := ValidateWindSpeed(-15); err != nil {
		t.Errorf("Expected negative wind to be valid, got %v", err)
	}
	if err := ValidateWindSpeed(math.NaN()); err == nil {
		t.Error("Expected error for NaN wind, got nil")
	}
	if err := ValidateWindSpeed(math.Inf(-1)); err == nil {
		t.Error("Expected error for infinite wind, got nil")
	}
}

func TestCommandValidator_ValidateCommand(t *testing.T) {
	validator := NewCommandValidator()
	defer validator.Close()

	t.Run("valid command", func(t *testing.T) {
		err := validator.ValidateCommand([]byte(`{"type":"launch"}`), "client-1")
		if err != nil {
			t.Errorf("Expected valid command to pass, got %v", err)
		}
	})

	t.Run("oversized command", func(t *testing.T) {
		big := append([]byte(`{"type":"`), bytes.Repeat([]byte("x"), MaxCommandSize)...)
		big = append(big, []byte(`"}`)...)
		err := validator.ValidateCommand(big, "client-1")
		if err == nil {
			t.Error("Expected error for oversized command, got nil")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		err := validator.ValidateCommand([]byte(`{"type":`), "client-1")
		if err == nil {
			t.Error("Expected error for invalid JSON, got nil")
		}
	})

	t.Run("rate limit enforced per client", func(t *testing.T) {
		data := []byte(`{"type":"throttle","value":1}`)
		for i := 0; i < MaxCommandsPerMin; i++ {
			if err := validator.ValidateCommand(data, "chatty"); err != nil {
				t.Fatalf("Expected command %d to pass, got %v", i+1, err)
			}
		}
		if err := validator.ValidateCommand(data, "chatty"); err == nil {
			t.Error("Expected rate limit error, got nil")
		}
		// Other clients are unaffected.
		if err := validator.ValidateCommand(data, "quiet"); err != nil {
			t.Errorf("Expected other client to pass, got %v", err)
		}
	})
}
