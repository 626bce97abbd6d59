package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	activitydomain "github.com/themery/themery/internal/domain/activity"
	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/uuid"
)

// themeProjectionDocument is the MongoDB document for a replicated theme.
// updated_at records the last apply, useful when judging replication lag.
type themeProjectionDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoThemeProjectionRepository implements
// activity.ThemeProjectionRepository. Upsert and Delete are idempotent:
// applying the same event twice leaves the same row state.
type MongoThemeProjectionRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// ProjectionRepoOption configures MongoThemeProjectionRepository.
type ProjectionRepoOption func(*MongoThemeProjectionRepository)

// WithProjectionRepoLogger sets the logger for the projection repository.
func WithProjectionRepoLogger(logger *slog.Logger) ProjectionRepoOption {
	return func(r *MongoThemeProjectionRepository) {
		r.logger = logger
	}
}

// NewMongoThemeProjectionRepository creates a new MongoDB projection repository.
func NewMongoThemeProjectionRepository(collection *mongo.Collection, opts ...ProjectionRepoOption) *MongoThemeProjectionRepository {
	r := &MongoThemeProjectionRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Upsert inserts the row or overwrites its name.
func (r *MongoThemeProjectionRepository) Upsert(ctx context.Context, p *activitydomain.ThemeProjection) error {
	filter := bson.M{"_id": p.ID().String()}
	update := bson.M{"$set": bson.M{
		"name":       p.Name(),
		"updated_at": time.Now().UTC(),
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, UpsertOptions())
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to upsert theme projection",
			slog.String("theme_id", p.ID().String()),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "theme projection")
	}

	return nil
}

// Delete removes the row. A missing row is a no-op success.
func (r *MongoThemeProjectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to delete theme projection",
			slog.String("theme_id", id.String()),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "theme projection")
	}

	return nil
}

// FindByID loads a projection row.
func (r *MongoThemeProjectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*activitydomain.ThemeProjection, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"_id": id.String()}
	var doc themeProjectionDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "theme projection")
	}

	return activitydomain.NewThemeProjection(uuid.UUID(doc.ID), doc.Name)
}

// Exists reports whether a row exists for the given ID.
func (r *MongoThemeProjectionRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if id.IsZero() {
		return false, errs.ErrInvalidInput
	}

	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, HandleMongoError(err, "theme projection")
	}

	return true, nil
}

// List returns projection rows with pagination, sorted by name.
func (r *MongoThemeProjectionRepository) List(ctx context.Context, offset, limit int) ([]*activitydomain.ThemeProjection, error) {
	if offset < 0 {
		return nil, errs.ErrInvalidInput
	}
	limit = ClampLimit(limit)

	opts := FindWithPagination(offset, limit, "name", 1)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, HandleMongoError(err, "theme projection")
	}
	defer cursor.Close(ctx)

	var projections []*activitydomain.ThemeProjection
	for cursor.Next(ctx) {
		var doc themeProjectionDocument
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			return nil, HandleMongoError(decodeErr, "theme projection")
		}
		p, buildErr := activitydomain.NewThemeProjection(uuid.UUID(doc.ID), doc.Name)
		if buildErr != nil {
			return nil, buildErr
		}
		projections = append(projections, p)
	}
	if err = cursor.Err(); err != nil {
		return nil, HandleMongoError(err, "theme projection")
	}

	return projections, nil
}

// Ensure MongoThemeProjectionRepository implements the repository interface.
var _ activitydomain.ThemeProjectionRepository = (*MongoThemeProjectionRepository)(nil)
