package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kickoff/matchcore/internal/api"
	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/internal/dispatcher"
	"github.com/kickoff/matchcore/internal/influx"
	"github.com/kickoff/matchcore/internal/logging"
	"github.com/kickoff/matchcore/internal/monitor"
	"github.com/kickoff/matchcore/internal/storage"
	"github.com/kickoff/matchcore/internal/worker"
)

// services is the event pipeline behind the season and match commands:
// dispatcher -> worker handlers -> storage backend and optional sinks.
type services struct {
	backend    storage.Backend
	dispatcher *dispatcher.Dispatcher
	workers    *worker.Manager
	monitor    *monitor.Service
	influx     *influx.Manager
}

func startServices(ctx context.Context, leagueName string) (*services, error) {
	svc := &services{}

	storageCfg := config.GetStorageConfig()
	if storageCfg.Type == "websocket" && storageCfg.WebSocket.URL == "" {
		storageCfg.WebSocket.URL = httpToWS(config.GetAPIConfig().ServerURL) + "/api/v1/stream"
	}

	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		DB:         config.GetDBConfig(),
		LogManager: SlogManager,
		LeagueName: leagueName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	svc.backend = backend
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)

	svc.dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(SlogManager.Component("dispatcher")))
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	deps := worker.Dependencies{
		LogManager:    SlogManager,
		SeasonContext: SeasonContext,
	}

	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		m := influx.NewManager(influxCfg, ZLogger)
		if err := m.Connect(ctx); err != nil {
			Logger.Warn("InfluxDB unavailable, telemetry disabled", "error", err)
		} else {
			svc.influx = m
			deps.Telemetry = m
		}
	}

	if apiCfg := config.GetAPIConfig(); apiCfg.ServerURL != "" && apiCfg.APIKey != "" {
		client := api.New(apiCfg.ServerURL, apiCfg.APIKey)
		if err := client.Healthcheck(); err != nil {
			Logger.Info("Backend API is offline", "url", apiCfg.ServerURL, "error", err)
		} else {
			Logger.Info("Backend API is online", "url", apiCfg.ServerURL)
		}
		deps.API = client
	}

	svc.workers = worker.NewManager(deps, backend)
	svc.workers.RegisterHandlers(svc.dispatcher)
	Logger.Debug("Worker handlers registered with dispatcher")

	svc.monitor = monitor.NewService(monitor.Dependencies{
		LogManager:    SlogManager,
		SeasonContext: SeasonContext,
		WorkerManager: svc.workers,
		Dispatcher:    svc.dispatcher,
		Telemetry:     deps.Telemetry,
		StatusDir:     config.GetString("logsDir"),
	})
	if err := svc.monitor.Start(); err != nil {
		Logger.Warn("Failed to start status monitor", "error", err)
	}

	return svc, nil
}

// stop drains the dispatcher before closing the backend so buffered
// events are persisted.
func (s *services) stop() {
	s.monitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.dispatcher.Shutdown(ctx); err != nil {
		Logger.Error("Failed to drain dispatcher", "error", err)
	}
	if err := s.backend.Close(); err != nil {
		Logger.Error("Failed to close storage backend", "error", err)
	}
	if s.influx != nil {
		if err := s.influx.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB client", "error", err)
		}
	}
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
