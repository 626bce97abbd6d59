// Package main provides the outbox relay entry point for the theme service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/themery/themery/internal/config"
	"github.com/themery/themery/internal/infrastructure/eventbus"
	"github.com/themery/themery/internal/infrastructure/metrics"
	mongodbinfra "github.com/themery/themery/internal/infrastructure/mongodb"
	"github.com/themery/themery/internal/infrastructure/outbox"
	"github.com/themery/themery/internal/worker"
)

// Timeout constants for the relay service.
const redisPingTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(cfg)

	logger.Info("starting theme outbox relay",
		slog.String("version", "0.1.0"),
		slog.String("environment", getEnvironment(cfg)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	mongoClient, err := connectMongoDB(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to MongoDB", slog.String("error", err.Error()))
		cancel()
		os.Exit(1)
	}
	defer func() {
		if disconnectErr := mongoClient.Disconnect(context.Background()); disconnectErr != nil {
			logger.Error("failed to disconnect from MongoDB", slog.String("error", disconnectErr.Error()))
		}
	}()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			logger.Error("failed to close Redis", slog.String("error", closeErr.Error()))
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(ctx, redisPingTimeout)
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		pingCancel()
		logger.Error("failed to connect to Redis", slog.String("error", pingErr.Error()))
		os.Exit(1)
	}
	pingCancel()

	logger.InfoContext(ctx, "connected to Redis", slog.String("addr", cfg.Redis.Addr))

	// The relay only publishes, so the group and consumer name are never
	// used by Redis.
	bus := eventbus.NewRedisStreamBus(
		redisClient,
		"theme-relay",
		relayConsumerName(),
		eventbus.WithLogger(logger),
		eventbus.WithStreamPrefix(cfg.EventBus.StreamPrefix),
	)

	db := mongoClient.Database(cfg.ThemeDB.Database)
	outboxColl := db.Collection(mongodbinfra.CollectionThemeOutbox)
	mongoOutbox := outbox.NewMongoOutbox(outboxColl, outbox.WithLogger(logger))

	outboxMetrics := metrics.NewOutboxMetrics(prometheus.DefaultRegisterer)

	outboxConfig := worker.OutboxWorkerConfig{
		PollInterval:    cfg.Outbox.PollInterval,
		BatchSize:       cfg.Outbox.BatchSize,
		MaxRetries:      cfg.Outbox.MaxRetries,
		CleanupAge:      cfg.Outbox.CleanupAge,
		CleanupInterval: cfg.Outbox.CleanupInterval,
		Enabled:         cfg.Outbox.Enabled,
	}

	outboxWorker := worker.NewOutboxWorker(
		mongoOutbox,
		bus,
		outboxConfig,
		worker.WithWorkerLogger(logger),
		worker.WithWorkerMetrics(outboxMetrics),
	)

	logger.Info("starting outbox relay",
		slog.Bool("outbox_enabled", outboxConfig.Enabled),
		slog.Duration("outbox_poll_interval", outboxConfig.PollInterval),
		slog.Int("outbox_batch_size", outboxConfig.BatchSize),
	)

	if runErr := outboxWorker.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("outbox relay error", slog.String("error", runErr.Error()))
	}

	logger.Info("theme outbox relay shutdown complete")
}

// relayConsumerName derives a per-instance name for the relay.
func relayConsumerName() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "theme-relay-1"
	}
	return hostname
}

// setupLogger creates and configures the structured logger based on configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	level := parseLogLevel(cfg.Log.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.IsDevelopment(),
	}

	switch cfg.Log.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvironment returns the environment name based on configuration.
func getEnvironment(cfg *config.Config) string {
	if cfg.IsDevelopment() {
		return "development"
	}
	return "production"
}

// connectMongoDB establishes a connection to the theme database.
func connectMongoDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.ThemeDB.URI).
		SetMaxPoolSize(cfg.ThemeDB.MaxPoolSize)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.ThemeDB.Timeout)
	defer pingCancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return nil, pingErr
	}

	logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", cfg.ThemeDB.Database),
	)

	return client, nil
}

// handleShutdown listens for OS signals and cancels the context.
func handleShutdown(cancel context.CancelFunc, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-quit
	logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	cancel()
}
