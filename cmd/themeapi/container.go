// Package main provides the theme API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	themeapp "github.com/themery/themery/internal/application/theme"
	"github.com/themery/themery/internal/config"
	httphandler "github.com/themery/themery/internal/handler/http"
	"github.com/themery/themery/internal/infrastructure/healthcheck"
	"github.com/themery/themery/internal/infrastructure/httpserver"
	mongodbinfra "github.com/themery/themery/internal/infrastructure/mongodb"
	"github.com/themery/themery/internal/infrastructure/outbox"
	"github.com/themery/themery/internal/infrastructure/repository/mongodb"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
)

// Container holds the theme service dependencies and manages their
// lifecycle. It implements httpserver.HealthChecker for the health
// endpoints.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	MongoDB     *mongo.Client
	MongoDBName string
	Outbox      *outbox.MongoOutbox

	// Repositories
	ThemeRepo *mongodb.MongoThemeRepository

	// Use cases
	CreateThemeUC *themeapp.CreateThemeUseCase
	UpdateThemeUC *themeapp.UpdateThemeUseCase
	DeleteThemeUC *themeapp.DeleteThemeUseCase
	GetThemeUC    *themeapp.GetThemeUseCase
	FindByNameUC  *themeapp.FindThemesByNameUseCase
	FindByDateUC  *themeapp.FindThemesByDateUseCase
	ListThemesUC  *themeapp.ListThemesUseCase

	// HTTP handlers
	ThemeHandler *httphandler.ThemeHandler

	// Health
	BacklogChecker *healthcheck.OutboxBacklogChecker
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

// setupInfrastructure initializes MongoDB and the outbox.
func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	c.setupOutbox()

	return nil
}

// setupMongoDB initializes the MongoDB client for the theme database.
func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.ThemeDB.URI).
		SetMaxPoolSize(c.Config.ThemeDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.ThemeDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.MongoDB = client
	c.MongoDBName = c.Config.ThemeDB.Database

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.ThemeDB.Database),
	)

	db := client.Database(c.MongoDBName)
	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.ThemeDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateThemeServiceIndexes(indexCtx, db); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created successfully")

	return nil
}

// setupOutbox initializes the transactional outbox used by the theme
// repository to stage integration events.
func (c *Container) setupOutbox() {
	db := c.MongoDB.Database(c.MongoDBName)
	outboxColl := db.Collection(mongodbinfra.CollectionThemeOutbox)

	c.Outbox = outbox.NewMongoOutbox(
		outboxColl,
		outbox.WithLogger(c.Logger),
	)

	c.BacklogChecker = healthcheck.NewOutboxBacklogChecker(c.Outbox)

	c.Logger.Debug("outbox initialized",
		slog.String("collection", mongodbinfra.CollectionThemeOutbox),
	)
}

// setupRepositories initializes all repository implementations.
func (c *Container) setupRepositories() {
	db := c.MongoDB.Database(c.MongoDBName)

	c.ThemeRepo = mongodb.NewMongoThemeRepository(
		c.MongoDB,
		db.Collection(mongodbinfra.CollectionThemes),
		db.Collection(mongodbinfra.CollectionThemeOutbox),
		mongodb.WithThemeRepoLogger(c.Logger),
	)

	c.Logger.Debug("repositories initialized")
}

// setupUseCases initializes all use cases.
func (c *Container) setupUseCases() {
	c.CreateThemeUC = themeapp.NewCreateThemeUseCase(c.ThemeRepo)
	c.UpdateThemeUC = themeapp.NewUpdateThemeUseCase(c.ThemeRepo)
	c.DeleteThemeUC = themeapp.NewDeleteThemeUseCase(c.ThemeRepo)
	c.GetThemeUC = themeapp.NewGetThemeUseCase(c.ThemeRepo)
	c.FindByNameUC = themeapp.NewFindThemesByNameUseCase(c.ThemeRepo)
	c.FindByDateUC = themeapp.NewFindThemesByDateUseCase(c.ThemeRepo)
	c.ListThemesUC = themeapp.NewListThemesUseCase(c.ThemeRepo)

	c.Logger.Debug("use cases initialized")
}

// setupHTTPHandlers initializes HTTP handlers.
func (c *Container) setupHTTPHandlers() {
	c.ThemeHandler = httphandler.NewThemeHandler(
		c.CreateThemeUC,
		c.UpdateThemeUC,
		c.DeleteThemeUC,
		c.GetThemeUC,
		c.FindByNameUC,
		c.FindByDateUC,
		c.ListThemesUC,
	)

	c.Logger.Debug("HTTP handlers initialized")
}

// Close gracefully closes all container resources.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

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

	// A growing backlog means the relay is behind, not that the API is
	// down, so it only degrades the report.
	backlogStatus := httpserver.ComponentStatus{Name: "outbox_backlog", Status: httpserver.StatusHealthy}
	if c.BacklogChecker == nil {
		backlogStatus.Status = httpserver.StatusUnhealthy
		backlogStatus.Message = "checker not initialized"
	} else if hs := c.BacklogChecker.Check(ctx); !hs.Healthy {
		backlogStatus.Status = httpserver.StatusDegraded
		backlogStatus.Message = hs.Message
	}
	statuses = append(statuses, backlogStatus)

	return statuses
}
