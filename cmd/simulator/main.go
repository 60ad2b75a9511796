// cmd/simulator/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opd-ai/go-rocketsim/pkg/config"
	"github.com/opd-ai/go-rocketsim/pkg/engine"
	"github.com/opd-ai/go-rocketsim/pkg/health"
	"github.com/opd-ai/go-rocketsim/pkg/logging"
	"github.com/opd-ai/go-rocketsim/pkg/metrics"
	"github.com/opd-ai/go-rocketsim/pkg/network"
	"github.com/opd-ai/go-rocketsim/pkg/resource"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	scenarioPath := flag.String("scenario", "", "Path to a scenario YAML file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		defaultConfig := config.DefaultConfig()
		if err := config.SaveConfig(defaultConfig, *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	// Load configuration
	var simConfig *config.SimConfig

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", *configPath,
		)
		simConfig = config.DefaultConfig()
	} else {
		simConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
	}

	// Apply environment variable overrides
	if err := config.ApplyEnvironmentOverrides(simConfig); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Failed to load environment configuration", err)
		os.Exit(1)
	}

	// Create simulation
	sim := engine.NewSimulation(simConfig)

	collector, err := metrics.NewFlightCollector(prometheus.NewRegistry())
	if err != nil {
		logger.Error(ctx, "Failed to register flight metrics", err)
		os.Exit(1)
	}
	sim.Collector = collector

	if *scenarioPath != "" {
		scenario, err := config.LoadScenario(*scenarioPath)
		if err != nil {
			logger.Error(ctx, "Failed to load scenario", err,
				"scenario_path", *scenarioPath,
			)
			os.Exit(1)
		}
		sim.LoadScenario(scenario)
		logger.Info(ctx, "Loaded scenario",
			"name", scenario.Name,
			"wind_events", len(scenario.Wind),
		)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Resource manager tracks every background loop started below.
	resources := resource.NewManager(envConfig)
	if err := resources.Start(); err != nil {
		logger.Error(ctx, "Failed to start resource manager", err)
		os.Exit(1)
	}

	// Telemetry hub: clients stream telemetry and send flight commands.
	hub := network.NewHub(sim)
	if err := resources.StartGoroutine(runCtx, "telemetry_hub", hub.Run); err != nil {
		logger.Error(ctx, "Failed to start telemetry hub", err)
		os.Exit(1)
	}

	// Simulation loop.
	if err := resources.StartGoroutine(runCtx, "simulation_loop", func(loopCtx context.Context) {
		sim.Run(loopCtx)
	}); err != nil {
		logger.Error(ctx, "Failed to start simulation loop", err)
		os.Exit(1)
	}

	// Telemetry broadcast loop.
	broadcastInterval := time.Duration(float64(time.Second) *
		float64(simConfig.Loop.TelemetryEvery) / float64(simConfig.Loop.TickRate))
	if err := resources.StartGoroutine(runCtx, "telemetry_broadcast", func(loopCtx context.Context) {
		ticker := time.NewTicker(broadcastInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				hub.BroadcastTelemetry(sim.Telemetry())
			}
		}
	}); err != nil {
		logger.Error(ctx, "Failed to start telemetry broadcast", err)
		os.Exit(1)
	}

	// Ground-station uplink, if configured.
	if simConfig.Network.UplinkURL != "" {
		uplink := network.NewUplinkService(simConfig.Network.UplinkURL, envConfig)
		if err := resources.StartGoroutine(runCtx, "ground_uplink", func(loopCtx context.Context) {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-loopCtx.Done():
					return
				case <-ticker.C:
					if err := uplink.SendTelemetry(loopCtx, sim.Telemetry()); err != nil {
						logger.Debug(loopCtx, "Uplink frame dropped", "error", err)
					}
				}
			}
		}); err != nil {
			logger.Error(ctx, "Failed to start ground uplink", err)
			os.Exit(1)
		}
		logger.Info(ctx, "Ground-station uplink enabled", "url", simConfig.Network.UplinkURL)
	}

	// Setup health checks
	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewSimulationHealthCheck(sim.GetRunning))
	healthChecker.AddCheck(health.NewTelemetryFeedHealthCheck(
		func() string { return simConfig.Network.ListenAddr },
	))
	healthChecker.AddCheck(health.NewMemoryHealthCheck(envConfig.MaxMemoryMB, nil))
	healthChecker.AddCheck(resource.NewHealthCheck(resources))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/health", healthChecker.LivenessHandler)
	mux.HandleFunc("/ready", healthChecker.ReadinessHandler)
	mux.Handle("/metrics", collector.Handler())

	httpServer := &http.Server{
		Addr:         simConfig.Network.ListenAddr,
		Handler:      mux,
		ReadTimeout:  envConfig.ReadTimeout,
		WriteTimeout: envConfig.WriteTimeout,
	}

	go func() {
		logger.Info(ctx, "Starting simulator server",
			"address", simConfig.Network.ListenAddr,
			"tick_rate", simConfig.Loop.TickRate,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Simulator server failed", err)
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info(ctx, "Shutting down simulator")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), envConfig.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Simulator server shutdown failed", err)
	}

	cancel()
	if err := resources.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Resource shutdown incomplete", err)
	}
}
