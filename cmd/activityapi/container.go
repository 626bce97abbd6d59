// Package main provides the activity API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	activityapp "github.com/themery/themery/internal/application/activity"
	"github.com/themery/themery/internal/config"
	httphandler "github.com/themery/themery/internal/handler/http"
	"github.com/themery/themery/internal/infrastructure/eventbus"
	"github.com/themery/themery/internal/infrastructure/healthcheck"
	"github.com/themery/themery/internal/infrastructure/httpserver"
	mongodbinfra "github.com/themery/themery/internal/infrastructure/mongodb"
	"github.com/themery/themery/internal/infrastructure/repository/mongodb"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
)

// Container holds the activity service dependencies and manages their
// lifecycle. It implements httpserver.HealthChecker for the health
// endpoints.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	MongoDB     *mongo.Client
	MongoDBName string
	Redis       *redis.Client
	DLQHandler  *eventbus.DeadLetterHandler

	// Repositories
	ActivityRepo   *mongodb.MongoActivityRepository
	ProjectionRepo *mongodb.MongoThemeProjectionRepository

	// Use cases
	CreateActivityUC  *activityapp.CreateActivityUseCase
	UpdateActivityUC  *activityapp.UpdateActivityUseCase
	DeleteActivityUC  *activityapp.DeleteActivityUseCase
	GetActivityUC     *activityapp.GetActivityUseCase
	FindByNameUC      *activityapp.FindActivitiesByNameUseCase
	FindByThemeUC     *activityapp.FindActivitiesByThemeUseCase
	ListActivitiesUC  *activityapp.ListActivitiesUseCase
	ListProjectionsUC *activityapp.ListThemeProjectionsUseCase

	// HTTP handlers
	ActivityHandler *httphandler.ActivityHandler

	// Health
	DeadLetterChecker *healthcheck.DeadLetterChecker
}

// Ensure Container implements httpserver.HealthChecker.
var _ httpserver.HealthChecker = (*Container)(nil)

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer creates a new dependency injection container.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupRepositories()
	c.setupUseCases()
	c.setupHTTPHandlers()

	return c, nil
}

// setupInfrastructure initializes MongoDB, Redis, and the dead letter
// handle used for health reporting.
func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	if err := c.setupRedis(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	c.DLQHandler = eventbus.NewDeadLetterHandler(
		c.Redis,
		eventbus.WithDeadLetterQueueKey(c.Config.EventBus.DeadLetterKey),
		eventbus.WithDeadLetterLogger(c.Logger),
	)
	c.DeadLetterChecker = healthcheck.NewDeadLetterChecker(c.DLQHandler)

	return nil
}

// setupMongoDB initializes the MongoDB client for the activity database.
func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.ActivityDB.URI).
		SetMaxPoolSize(c.Config.ActivityDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.ActivityDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.MongoDB = client
	c.MongoDBName = c.Config.ActivityDB.Database

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.ActivityDB.Database),
	)

	db := client.Database(c.MongoDBName)
	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.ActivityDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateActivityServiceIndexes(indexCtx, db); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created successfully")

	return nil
}

// setupRedis initializes the Redis client.
func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)

	return nil
}

// setupRepositories initializes all repository implementations.
func (c *Container) setupRepositories() {
	db := c.MongoDB.Database(c.MongoDBName)

	c.ActivityRepo = mongodb.NewMongoActivityRepository(
		db.Collection(mongodbinfra.CollectionActivities),
		mongodb.WithActivityRepoLogger(c.Logger),
	)

	c.ProjectionRepo = mongodb.NewMongoThemeProjectionRepository(
		db.Collection(mongodbinfra.CollectionThemeProjections),
		mongodb.WithProjectionRepoLogger(c.Logger),
	)

	c.Logger.Debug("repositories initialized")
}

// setupUseCases initializes all use cases.
func (c *Container) setupUseCases() {
	c.CreateActivityUC = activityapp.NewCreateActivityUseCase(c.ActivityRepo, c.ProjectionRepo)
	c.UpdateActivityUC = activityapp.NewUpdateActivityUseCase(c.ActivityRepo, c.ProjectionRepo)
	c.DeleteActivityUC = activityapp.NewDeleteActivityUseCase(c.ActivityRepo)
	c.GetActivityUC = activityapp.NewGetActivityUseCase(c.ActivityRepo)
	c.FindByNameUC = activityapp.NewFindActivitiesByNameUseCase(c.ActivityRepo)
	c.FindByThemeUC = activityapp.NewFindActivitiesByThemeUseCase(c.ActivityRepo)
	c.ListActivitiesUC = activityapp.NewListActivitiesUseCase(c.ActivityRepo)
	c.ListProjectionsUC = activityapp.NewListThemeProjectionsUseCase(c.ProjectionRepo)

	c.Logger.Debug("use cases initialized")
}

// setupHTTPHandlers initializes HTTP handlers.
func (c *Container) setupHTTPHandlers() {
	c.ActivityHandler = httphandler.NewActivityHandler(
		c.CreateActivityUC,
		c.UpdateActivityUC,
		c.DeleteActivityUC,
		c.GetActivityUC,
		c.FindByNameUC,
		c.FindByThemeUC,
		c.ListActivitiesUC,
		c.ListProjectionsUC,
	)

	c.Logger.Debug("HTTP handlers initialized")
}

// Close gracefully closes all container resources.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		} else {
			c.Logger.Debug("redis connection closed")
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		} else {
			c.Logger.Debug("mongodb connection closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Logger.Info("all container resources closed")
	return nil
}

// IsReady implements httpserver.HealthChecker.
func (c *Container) IsReady(ctx context.Context) bool {
	if c.MongoDB == nil {
		return false
	}
	if err := c.MongoDB.Ping(ctx, nil); err != nil {
		c.Logger.WarnContext(ctx, "mongodb health check failed", slog.String("error", err.Error()))
		return false
	}

	if c.Redis == nil {
		return false
	}
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		c.Logger.WarnContext(ctx, "redis health check failed", slog.String("error", err.Error()))
		return false
	}

	return true
}

// GetHealthStatus implements httpserver.HealthChecker.
func (c *Container) GetHealthStatus(ctx context.Context) []httpserver.ComponentStatus {
	var statuses []httpserver.ComponentStatus

	mongoStatus := httpserver.ComponentStatus{Name: "mongodb", Status: httpserver.StatusHealthy}
	if c.MongoDB == nil {
		mongoStatus.Status = httpserver.StatusUnhealthy
		mongoStatus.Message = "client not initialized"
	} else if err := c.MongoDB.Ping(ctx, nil); err != nil {
		mongoStatus.Status = httpserver.StatusUnhealthy
		mongoStatus.Message = err.Error()
	}
	statuses = append(statuses, mongoStatus)

	redisStatus := httpserver.ComponentStatus{Name: "redis", Status: httpserver.StatusHealthy}
	if c.Redis == nil {
		redisStatus.Status = httpserver.StatusUnhealthy
		redisStatus.Message = "client not initialized"
	} else if err := c.Redis.Ping(ctx).Err(); err != nil {
		redisStatus.Status = httpserver.StatusUnhealthy
		redisStatus.Message = err.Error()
	}
	statuses = append(statuses, redisStatus)

	// Parked deliveries need an operator, not a restart, so a non-empty
	// queue only degrades the report.
	dlqStatus := httpserver.ComponentStatus{Name: "dead_letter_queue", Status: httpserver.StatusHealthy}
	if c.DeadLetterChecker == nil {
		dlqStatus.Status = httpserver.StatusUnhealthy
		dlqStatus.Message = "checker not initialized"
	} else if hs := c.DeadLetterChecker.Check(ctx); !hs.Healthy {
		dlqStatus.Status = httpserver.StatusDegraded
		dlqStatus.Message = hs.Message
	}
	statuses = append(statuses, dlqStatus)

	return statuses
}
