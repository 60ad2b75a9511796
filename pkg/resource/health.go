package resource

import (
	"context"
	"fmt"
)

// HealthCheck exposes the resource manager's usage as a readiness check.
type HealthCheck struct {
	manager *Manager
}

// NewHealthCheck creates a health check backed by the resource manager.
func NewHealthCheck(manager *Manager) *HealthCheck {
	return &HealthCheck{
		manager: manager,
	}
}

// Name returns the name of this health check.
func (h *HealthCheck) Name() string {
	return "resource"
}

// Check verifies that resource usage is within acceptable limits.
// Goroutine usage fails the check at 80% of the limit to surface
// pressure before StartGoroutine begins rejecting work.
func (h *HealthCheck) Check(ctx context.Context) error {
	stats := h.manager.Stats()

	if stats.MemoryUsageMB > stats.MaxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB",
			stats.MemoryUsageMB, stats.MaxMemoryMB)
	}

	threshold := int64(float64(stats.MaxGoroutines) * 0.8)
	if stats.GoroutineCount > threshold {
		return fmt.Errorf("goroutine count %d exceeds 80%% threshold (%d/%d)",
			stats.GoroutineCount, threshold, stats.MaxGoroutines)
	}

	return nil
}
