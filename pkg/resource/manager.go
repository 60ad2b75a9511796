// Package resource tracks memory and goroutine usage for the simulator
// process and coordinates graceful shutdown of its background loops.
package resource

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-rocketsim/pkg/config"
	"github.com/opd-ai/go-rocketsim/pkg/logging"
)

// Manager tracks the simulator's background goroutines and polls memory
// usage against configured limits. Every long-lived goroutine in the
// process starts through StartGoroutine so shutdown can wait for all of
// them.
type Manager struct {
	maxMemoryMB     int64
	maxGoroutines   int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration

	goroutineCount int64
	memoryUsageMB  int64

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.RWMutex
	running bool
	logger  *logging.Logger

	lastMemoryCheck time.Time
}

// NewManager creates a resource manager from environment settings.
func NewManager(envConfig *config.EnvironmentConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		maxMemoryMB:     envConfig.MaxMemoryMB,
		maxGoroutines:   int64(envConfig.MaxGoroutines),
		shutdownTimeout: envConfig.ShutdownTimeout,
		checkInterval:   envConfig.ResourceCheckInterval,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		logger:          logging.NewLogger(),
		lastMemoryCheck: time.Now(),
	}
}

// Start begins the periodic resource monitoring loop.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("resource manager already running")
	}
	m.running = true
	m.mu.Unlock()

	go m.monitoringLoop()

	m.logger.Info(m.ctx, "resource manager started",
		"max_memory_mb", m.maxMemoryMB,
		"max_goroutines", m.maxGoroutines,
		"check_interval", m.checkInterval,
	)

	return nil
}

// StartGoroutine starts a tracked goroutine with panic recovery. It
// returns an error if the goroutine limit would be exceeded.
func (m *Manager) StartGoroutine(ctx context.Context, name string, fn func(context.Context)) error {
	current := atomic.LoadInt64(&m.goroutineCount)
	if current >= m.maxGoroutines {
		m.logger.Warn(ctx, "goroutine limit exceeded",
			"current", current,
			"limit", m.maxGoroutines,
			"name", name,
		)
		return fmt.Errorf("goroutine limit exceeded: %d/%d", current, m.maxGoroutines)
	}

	atomic.AddInt64(&m.goroutineCount, 1)

	go func() {
		defer atomic.AddInt64(&m.goroutineCount, -1)
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error(ctx, "goroutine panic",
					fmt.Errorf("panic: %v", r),
					"name", name,
				)
			}
		}()

		fn(ctx)
	}()

	return nil
}

// CheckMemoryUsage samples heap usage and compares it against the limit.
func (m *Manager) CheckMemoryUsage() error {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	currentMB := int64(stats.Alloc / 1024 / 1024)
	atomic.StoreInt64(&m.memoryUsageMB, currentMB)

	m.mu.Lock()
	m.lastMemoryCheck = time.Now()
	m.mu.Unlock()

	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}

	return nil
}

// GoroutineCount returns the number of tracked goroutines.
func (m *Manager) GoroutineCount() int64 {
	return atomic.LoadInt64(&m.goroutineCount)
}

// MemoryUsage returns the most recently sampled memory usage in MB.
func (m *Manager) MemoryUsage() int64 {
	return atomic.LoadInt64(&m.memoryUsageMB)
}

// Stats contains resource usage statistics for monitoring endpoints.
type Stats struct {
	GoroutineCount  int64     `json:"goroutine_count"`
	MaxGoroutines   int64     `json:"max_goroutines"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// Stats returns a snapshot of current resource usage.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	lastCheck := m.lastMemoryCheck
	m.mu.RUnlock()

	return Stats{
		GoroutineCount:  m.GoroutineCount(),
		MaxGoroutines:   m.maxGoroutines,
		MemoryUsageMB:   m.MemoryUsage(),
		MaxMemoryMB:     m.maxMemoryMB,
		LastMemoryCheck: lastCheck,
	}
}

// Shutdown stops monitoring and waits for all tracked goroutines to
// finish, up to the configured shutdown timeout.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	m.logger.Info(ctx, "shutting down resource manager")
	m.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, m.shutdownTimeout)
	defer cancel()

	select {
	case <-m.done:
	case <-shutdownCtx.Done():
		m.logger.Warn(ctx, "resource monitoring loop did not stop gracefully")
	}

	return m.waitForGoroutines(shutdownCtx)
}

func (m *Manager) waitForGoroutines(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		count := m.GoroutineCount()
		if count == 0 {
			m.logger.Info(ctx, "all tracked goroutines finished")
			return nil
		}

		select {
		case <-ticker.C:
			m.logger.Debug(ctx, "waiting for goroutines to finish",
				"remaining", count,
			)
		case <-ctx.Done():
			remaining := m.GoroutineCount()
			m.logger.Warn(ctx, "shutdown timeout exceeded with goroutines still running",
				"remaining", remaining,
			)
			return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
		}
	}
}

func (m *Manager) monitoringLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.CheckMemoryUsage(); err != nil {
				m.logger.Error(m.ctx, "memory limit exceeded", err,
					"current_mb", m.MemoryUsage(),
					"limit_mb", m.maxMemoryMB,
				)
			}
			m.logger.Debug(m.ctx, "resource usage check",
				"goroutines", m.GoroutineCount(),
				"max_goroutines", m.maxGoroutines,
				"memory_mb", m.MemoryUsage(),
				"max_memory_mb", m.maxMemoryMB,
			)
		case <-m.ctx.Done():
			return
		}
	}
}
