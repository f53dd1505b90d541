package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"agora/internal/clock"
	"agora/internal/database/boltstore"
	"agora/internal/database/sqlitestore"
	"agora/internal/forum"
	"agora/internal/guard"
	"agora/internal/handlers"
	"agora/internal/metrics"
	"agora/internal/moderation"
	"agora/internal/routing"
	"agora/internal/tracing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure zerolog
	// Set log level from environment (default: info)
	logLevel := os.Getenv("LOG_LEVEL")
	switch logLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Use pretty console logging in development, JSON in production
	if os.Getenv("LOG_FORMAT") == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	log.Info().Msg("Starting Agora moderation engine")

	port := os.Getenv("PORT")
	if port == "" {
		port = "18920"
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get home directory")
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	// Content and moderation data live in SQLite
	dbPath := os.Getenv("AGORA_DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "agora", "agora.db")
	}
	contentStore, err := sqlitestore.Open(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("Failed to open content database")
	}
	defer contentStore.Close()
	log.Info().Str("path", dbPath).Msg("Content database opened")

	// Throttle data (rate windows, cooldowns, fingerprints) lives in BoltDB
	throttlePath := os.Getenv("AGORA_THROTTLE_DB_PATH")
	if throttlePath == "" {
		throttlePath = filepath.Join(dataDir, "agora", "agora-throttle.db")
	}
	throttleStore, err := boltstore.Open(boltstore.Options{
		Path: throttlePath,
	})
	if err != nil {
		log.Fatal().Err(err).Str("path", throttlePath).Msg("Failed to open throttle database")
	}
	defer throttleStore.Close()
	log.Info().Str("path", throttlePath).Msg("Throttle database opened")

	// Optional tracing; on only when an OTLP endpoint is configured
	tracingEnabled := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
	if tracingEnabled {
		tp, err := tracing.Init(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to shut down tracer provider")
			}
		}()
		log.Info().Msg("Tracing initialized")
	}

	forumStore := contentStore.ForumStore()
	moderationStore := contentStore.ModerationStore()

	clk := clock.System{}
	g := guard.New(throttleStore.GuardStore(), clk)
	forumService := forum.NewService(forumStore, g, clk)
	moderationService := moderation.NewService(moderationStore, forumStore, forumStore, clk)

	// Background gauge collector feeds the dashboard gauges
	collectorCtx, cancelCollector := context.WithCancel(context.Background())
	defer cancelCollector()
	metrics.StartCollector(collectorCtx, metrics.StatsSource{
		PendingReportCount: gaugeFunc(moderationStore.CountPendingReports),
		BannedUserCount:    gaugeFunc(moderationStore.CountBannedUsers),
		TopicCount:         gaugeFunc(forumStore.CountTopics),
		PostCount:          gaugeFunc(forumStore.CountPosts),
	}, 30*time.Second)

	h := handlers.NewHandler(forumService, moderationService)

	handler := routing.SetupRouter(routing.Config{
		Handlers: h,
		Users:    forumStore,
		Logger:   log.Logger,
		Tracing:  tracingEnabled,
	})

	log.Info().
		Str("address", "0.0.0.0:"+port).
		Str("url", "http://localhost:"+port).
		Str("database", dbPath).
		Msg("Starting HTTP server")

	if err := http.ListenAndServe("0.0.0.0:"+port, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}

// gaugeFunc adapts a store count method to the collector's plain int source.
func gaugeFunc(count func(context.Context) (int, error)) func() int {
	return func() int {
		n, err := count(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("Gauge count failed")
			return 0
		}
		return n
	}
}
