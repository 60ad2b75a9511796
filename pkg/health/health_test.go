package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockHealthCheck implements HealthCheck for testing
type mockHealthCheck struct {
	name    string
	healthy bool
	err     error
}

func (m *mockHealthCheck) Name() string {
	return m.name
}

func (m *mockHealthCheck) Check(ctx context.Context) error {
	if !m.healthy {
		if m.err != nil {
			return m.err
		}
		return fmt.Errorf("mock health check failed")
	}
	return nil
}

func TestNewHealthChecker(t *testing.T) {
	hc := NewHealthChecker()
	if hc == nil {
		t.Fatal("NewHealthChecker() returned nil")
	}
	if hc.checks == nil {
		t.Error("checks map not initialized")
	}
}

func TestHealthChecker_AddCheck(t *testing.T) {
	hc := NewHealthChecker()

	check := &mockHealthCheck{name: "test", healthy: true}
	hc.AddCheck(check)

	if len(hc.checks) != 1 {
		t.Errorf("Expected 1 check, got %d", len(hc.checks))
	}

	if hc.checks["test"] != check {
		t.Error("Check not properly stored")
	}
}

func TestHealthChecker_RemoveCheck(t *testing.T) {
	hc := NewHealthChecker()

	check := &mockHealthCheck{name: "test", healthy: true}
	hc.AddCheck(check)
	hc.RemoveCheck("test")

	if len(hc.checks) != 0 {
		t.Errorf("Expected 0 checks after removal, got %d", len(hc.checks))
	}
}

func TestHealthChecker_CheckHealth(t *testing.T) {
	tests := []struct {
		name     string
		checks   []*mockHealthCheck
		expected string
	}{
		{
			name:     "no checks registered",
			checks:   nil,
			expected: "healthy",
		},
		{
			name: "all checks healthy",
			checks: []*mockHealthCheck{
				{name: "a", healthy: true},
				{name: "b", healthy: true},
			},
			expected: "healthy",
		},
		{
			name: "one check failing",
			checks: []*mockHealthCheck{
				{name: "a", healthy: true},
				{name: "b", healthy: false},
			},
			expected: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for _, check := range tt.checks {
				hc.AddCheck(check)
			}

			status := hc.CheckHealth(context.Background())
			if status.Status != tt.expected {
				t.Errorf("Expected status %q, got %q", tt.expected, status.Status)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("Expected %d component results, got %d", len(tt.checks), len(status.Checks))
			}
		})
	}
}

func TestHealthChecker_LivenessHandler(t *testing.T) {
	hc := NewHealthChecker()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()

	hc.LivenessHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != "alive" {
		t.Errorf("Expected status alive, got %q", response["status"])
	}
}

func TestHealthChecker_ReadinessHandler(t *testing.T) {
	t.Run("ready when checks pass", func(t *testing.T) {
		hc := NewHealthChecker()
		hc.AddCheck(&mockHealthCheck{name: "sim", healthy: true})

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()

		hc.ReadinessHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}
	})

	t.Run("unavailable when a check fails", func(t *testing.T) {
		hc := NewHealthChecker()
		hc.AddCheck(&mockHealthCheck{name: "sim", healthy: false, err: fmt.Errorf("loop stalled")})

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()

		hc.ReadinessHandler(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", rec.Code)
		}

		var status HealthStatus
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if status.Checks["sim"].Message != "loop stalled" {
			t.Errorf("Expected failure message, got %q", status.Checks["sim"].Message)
		}
	})
}

func TestSimulationHealthCheck(t *testing.T) {
	running := true
	check := NewSimulationHealthCheck(func() bool { return running })

	if check.Name() != "simulation" {
		t.Errorf("Expected name simulation, got %q", check.Name())
	}

	if err := check.Check(context.Background()); err != nil {
		t.Errorf("Expected healthy while running, got %v", err)
	}

	running = false
	if err := check.Check(context.Background()); err == nil {
		t.Error("Expected error while stopped, got nil")
	}
}

func TestTelemetryFeedHealthCheck(t *testing.T) {
	addr := "localhost:4810"
	check := NewTelemetryFeedHealthCheck(func() string { return addr })

	if err := check.Check(context.Background()); err != nil {
		t.Errorf("Expected healthy with active listener, got %v", err)
	}

	addr = ""
	if err := check.Check(context.Background()); err == nil {
		t.Error("Expected error without listener, got nil")
	}
}

func TestMemoryHealthCheck(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		check := NewMemoryHealthCheck(100, func() int64 { return 50 })
		if err := check.Check(context.Background()); err != nil {
			t.Errorf("Expected healthy under limit, got %v", err)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		check := NewMemoryHealthCheck(100, func() int64 { return 150 })
		if err := check.Check(context.Background()); err == nil {
			t.Error("Expected error over limit, got nil")
		}
	})

	t.Run("default heap reader", func(t *testing.T) {
		check := NewMemoryHealthCheck(1 << 20, nil)
		if err := check.Check(context.Background()); err != nil {
			t.Errorf("Expected heap well under 1TB, got %v", err)
		}
	})
}
