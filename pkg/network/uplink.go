package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-rocketsim/pkg/config"
	"github.com/opd-ai/go-rocketsim/pkg/logging"
	"github.com/opd-ai/go-rocketsim/pkg/rocket"
)

// UplinkService posts telemetry to a ground station endpoint through a
// circuit breaker. The breaker isolates a failing ground station so the
// simulation loop never blocks on a dead endpoint.
type UplinkService struct {
	breaker *gobreaker.CircuitBreaker
	client  *http.Client
	url     string
	logger  *logging.Logger
	config  *config.EnvironmentConfig
}

// UplinkOperation represents a function that performs an uplink operation.
// It should return an error if the operation fails.
type UplinkOperation func() error

// NewUplinkService creates an UplinkService posting to url, with a circuit
// breaker configured from environment settings.
func NewUplinkService(url string, envConfig *config.EnvironmentConfig) *UplinkService {
	logger := logging.NewLogger()

	settings := gobreaker.Settings{
		Name:        "rocketsim-uplink",
		MaxRequests: uint32(envConfig.CircuitBreakerMaxRequests),
		Interval:    envConfig.CircuitBreakerInterval,
		Timeout:     envConfig.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(envConfig.CircuitBreakerMaxConsecutiveFails)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from,
				"to", to,
			)
		},
	}

	return &UplinkService{
		breaker: gobreaker.NewCircuitBreaker(settings),
		client:  &http.Client{Timeout: envConfig.WriteTimeout},
		url:     url,
		logger:  logger,
		config:  envConfig,
	}
}

// SendTelemetry posts a telemetry frame to the ground station through the
// circuit breaker.
func (us *UplinkService) SendTelemetry(ctx context.Context, tel rocket.Telemetry) error {
	data, err := json.Marshal(tel)
	if err != nil {
		return fmt.Errorf("failed to encode telemetry: %w", err)
	}
	return us.Execute(ctx, func() error {
		return us.post(ctx, data)
	})
}

func (us *UplinkService) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, us.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build uplink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := us.client.Do(req)
	if err != nil {
		return fmt.Errorf("uplink request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ground station returned status %d", resp.StatusCode)
	}
	return nil
}

// Execute runs an uplink operation through the circuit breaker.
// If the circuit is open, it returns an error immediately without
// attempting the operation.
func (us *UplinkService) Execute(ctx context.Context, operation UplinkOperation) error {
	_, err := us.breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	if err != nil {
		us.logger.LogWithContext(ctx, slog.LevelError, "circuit breaker execution failed",
			"error", err,
			"state", us.breaker.State(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}

	return nil
}

// ExecuteWithRetry runs an uplink operation with retry logic and exponential
// backoff. The circuit breaker state is checked before each retry attempt.
func (us *UplinkService) ExecuteWithRetry(ctx context.Context, operation UplinkOperation) error {
	maxRetries := 3
	baseDelay := 1 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := us.Execute(ctx, operation)
		if err == nil {
			return nil
		}

		if us.breaker.State() == gobreaker.StateOpen {
			us.logger.LogWithContext(ctx, slog.LevelWarn, "circuit breaker is open, skipping retries",
				"attempt", attempt+1,
				"max_retries", maxRetries,
			)
			return err
		}

		if attempt == maxRetries-1 {
			us.logger.LogWithContext(ctx, slog.LevelError, "all retry attempts failed",
				"attempts", maxRetries,
				"final_error", err,
			)
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
		}

		delay := time.Duration(attempt+1) * baseDelay
		us.logger.LogWithContext(ctx, slog.LevelWarn, "operation failed, retrying",
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	return fmt.Errorf("unexpected exit from retry loop")
}

// GetState returns the current state of the circuit breaker.
func (us *UplinkService) GetState() gobreaker.State {
	return us.breaker.State()
}

// GetCounts returns the current failure and success counts of the circuit
// breaker.
func (us *UplinkService) GetCounts() gobreaker.Counts {
	return us.breaker.Counts()
}
