// Hearth Core - Virtual Smart Home Platform
//
// This is the main entry point for the Hearth Core daemon. Hearth is a
// multi-user virtual smart home: users register simulated appliances
// (lights, fans, ACs, thermostats, heaters) and drive them through a
// REST API, a natural-language assistant, and a live WebSocket feed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/hearthwise/hearth-core/migrations"

	"github.com/hearthwise/hearth-core/internal/activity"
	"github.com/hearthwise/hearth-core/internal/api"
	"github.com/hearthwise/hearth-core/internal/assistant"
	"github.com/hearthwise/hearth-core/internal/auth"
	"github.com/hearthwise/hearth-core/internal/control"
	"github.com/hearthwise/hearth-core/internal/device"
	"github.com/hearthwise/hearth-core/internal/infrastructure/config"
	"github.com/hearthwise/hearth-core/internal/infrastructure/database"
	"github.com/hearthwise/hearth-core/internal/infrastructure/logging"
	"github.com/hearthwise/hearth-core/internal/infrastructure/mqtt"
	"github.com/hearthwise/hearth-core/internal/infrastructure/tsdb"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hearth Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and apply migrations
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Device registry over the repository, cache warmed from disk
	deviceRepo := device.NewSQLiteRepository(db.DB)
	registry := device.NewRegistry(deviceRepo)
	registry.SetLogger(log)
	if refreshErr := registry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}
	log.Info("device registry initialised", "devices", registry.Count())

	activities := activity.NewSQLiteRepository(db.DB)

	authService := auth.NewService(
		auth.NewUserRepository(db.DB),
		auth.NewTokenRepository(db.DB),
		cfg.Security.JWT.Secret,
		cfg.Security.JWT.AccessTokenTTL,
		cfg.Security.JWT.RefreshTokenTTL,
	)

	// Dispatcher: validation, transition, atomic persistence
	dispatcher := control.New(db, registry, deviceRepo, activities)
	dispatcher.SetLogger(log)

	// Assistant: Gemini when a key is configured, otherwise the built-in
	// phrase parser alone
	var interpreter assistant.Interpreter
	if cfg.Assistant.APIKey != "" {
		interpreter = assistant.NewGeminiInterpreter(
			cfg.Assistant.Endpoint,
			cfg.Assistant.Model,
			cfg.Assistant.APIKey,
			cfg.AssistantTimeout(),
		)
		log.Info("assistant interpreter configured", "model", cfg.Assistant.Model)
	} else {
		log.Info("no assistant API key, commands use the phrase parser only")
	}
	resolver := assistant.NewResolver(registry, interpreter)
	resolver.SetLogger(log)
	dispatcher.SetResolver(resolver)

	// Status bus (optional)
	if cfg.MQTT.Enabled {
		bus, busErr := mqtt.Connect(cfg.MQTT)
		if busErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", busErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := bus.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		bus.SetLogger(log)
		dispatcher.SetBus(bus)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Host, cfg.MQTT.Port),
			"client_id", cfg.MQTT.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Time-series recording (optional)
	if cfg.InfluxDB.Enabled {
		recorder, tsdbErr := tsdb.Connect(cfg.InfluxDB)
		if tsdbErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", tsdbErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			recorder.Close()
		}()
		recorder.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		dispatcher.SetRecorder(recorder)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// HTTP API and WebSocket feed
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log,
		Auth:       authService,
		Registry:   registry,
		Dispatcher: dispatcher,
		Activities: activities,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Committed state changes stream to the owner's websocket clients
	dispatcher.SetEventSink(server.Hub())

	if err := healthCheck(ctx, db, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses the HEARTH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies core components after startup.
func healthCheck(ctx context.Context, db *database.DB, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
