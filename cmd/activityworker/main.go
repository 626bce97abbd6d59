// Package main provides the theme replication consumer entry point for
// the activity service.
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

	"github.com/themery/themery/internal/application/projection"
	"github.com/themery/themery/internal/config"
	"github.com/themery/themery/internal/infrastructure/eventbus"
	"github.com/themery/themery/internal/infrastructure/metrics"
	mongodbinfra "github.com/themery/themery/internal/infrastructure/mongodb"
	"github.com/themery/themery/internal/infrastructure/repository/mongodb"
)

// Timeout constants for the consumer service.
const redisPingTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(cfg)

	logger.Info("starting theme replication consumer",
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

	db := mongoClient.Database(cfg.ActivityDB.Database)
	projectionRepo := mongodb.NewMongoThemeProjectionRepository(
		db.Collection(mongodbinfra.CollectionThemeProjections),
		mongodb.WithProjectionRepoLogger(logger),
	)

	consumerMetrics := metrics.NewConsumerMetrics(prometheus.DefaultRegisterer)

	dispatcher := eventbus.NewThemeEventDispatcher(
		projection.NewUpsertThemeUseCase(projectionRepo),
		projection.NewRemoveThemeUseCase(projectionRepo),
		eventbus.WithDispatcherLogger(logger),
		eventbus.WithDispatcherMetrics(consumerMetrics),
	)

	dlqHandler := eventbus.NewDeadLetterHandler(
		redisClient,
		eventbus.WithDeadLetterQueueKey(cfg.EventBus.DeadLetterKey),
		eventbus.WithDeadLetterLogger(logger),
	)

	retryConfig := eventbus.DefaultRetryConfig()
	if cfg.EventBus.MaxRetries > 0 {
		retryConfig.MaxRetries = cfg.EventBus.MaxRetries
	}

	bus := eventbus.NewRedisStreamBus(
		redisClient,
		cfg.EventBus.ConsumerGroup,
		consumerName(cfg),
		eventbus.WithLogger(logger),
		eventbus.WithStreamPrefix(cfg.EventBus.StreamPrefix),
		eventbus.WithRetryConfig(retryConfig),
		eventbus.WithDeadLetterHandler(dlqHandler),
		eventbus.WithConsumerMetrics(consumerMetrics),
	)

	logHandler := eventbus.NewLoggingHandler(logger)
	if subErr := eventbus.RegisterThemeSubscriptions(bus, dispatcher, logHandler); subErr != nil {
		logger.Error("failed to register subscriptions", slog.String("error", subErr.Error()))
		os.Exit(1)
	}

	logger.Info("starting consumer",
		slog.String("group", cfg.EventBus.ConsumerGroup),
		slog.String("consumer", consumerName(cfg)),
		slog.String("stream_prefix", cfg.EventBus.StreamPrefix),
		slog.Int("max_retries", retryConfig.MaxRetries),
	)

	if runErr := bus.Start(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("consumer error", slog.String("error", runErr.Error()))
	}

	if shutdownErr := bus.Shutdown(); shutdownErr != nil {
		logger.Error("consumer shutdown error", slog.String("error", shutdownErr.Error()))
	}

	logger.Info("theme replication consumer shutdown complete")
}

// consumerName returns the configured consumer name or derives one from
// the hostname. Stable names keep the group's consumer list from growing
// with every restart; deliveries a dead instance left pending are picked
// up by the bus's idle reclaim pass.
func consumerName(cfg *config.Config) string {
	if cfg.EventBus.ConsumerName != "" {
		return cfg.EventBus.ConsumerName
	}
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "activity-consumer-1"
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

// connectMongoDB establishes a connection to the activity database.
func connectMongoDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.ActivityDB.URI).
		SetMaxPoolSize(cfg.ActivityDB.MaxPoolSize)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.ActivityDB.Timeout)
	defer pingCancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return nil, pingErr
	}

	logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", cfg.ActivityDB.Database),
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
