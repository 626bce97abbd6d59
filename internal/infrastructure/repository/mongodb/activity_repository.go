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

// activityDocument is the MongoDB document for an activity.
type activityDocument struct {
	ID          string    `bson:"_id"`
	ThemeID     string    `bson:"theme_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	URL         string    `bson:"url"`
	Date        time.Time `bson:"date,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// MongoActivityRepository implements activity.Repository.
type MongoActivityRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// ActivityRepoOption configures MongoActivityRepository.
type ActivityRepoOption func(*MongoActivityRepository)

// WithActivityRepoLogger sets the logger for the activity repository.
func WithActivityRepoLogger(logger *slog.Logger) ActivityRepoOption {
	return func(r *MongoActivityRepository) {
		r.logger = logger
	}
}

// NewMongoActivityRepository creates a new MongoDB activity repository.
func NewMongoActivityRepository(collection *mongo.Collection, opts ...ActivityRepoOption) *MongoActivityRepository {
	r := &MongoActivityRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Save persists the activity.
func (r *MongoActivityRepository) Save(ctx context.Context, a *activitydomain.Activity) error {
	doc := activityToDocument(a)

	filter := bson.M{"_id": doc.ID}
	_, err := r.collection.ReplaceOne(ctx, filter, doc, ReplaceUpsertOptions())
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save activity",
			slog.String("activity_id", a.ID().String()),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "activity")
	}

	return nil
}

// FindByID loads an activity by ID.
func (r *MongoActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*activitydomain.Activity, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"_id": id.String()}
	var doc activityDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find activity by ID",
				slog.String("activity_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "activity")
	}

	return documentToActivity(&doc), nil
}

// FindByName returns activities whose name matches exactly.
func (r *MongoActivityRepository) FindByName(ctx context.Context, name string) ([]*activitydomain.Activity, error) {
	if name == "" {
		return nil, errs.ErrInvalidInput
	}

	return r.findMany(ctx, bson.M{"name": name})
}

// FindByThemeID returns activities that reference the theme.
func (r *MongoActivityRepository) FindByThemeID(ctx context.Context, themeID uuid.UUID) ([]*activitydomain.Activity, error) {
	if themeID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	return r.findMany(ctx, bson.M{"theme_id": themeID.String()})
}

// List returns activities with pagination, newest first.
func (r *MongoActivityRepository) List(ctx context.Context, offset, limit int) ([]*activitydomain.Activity, error) {
	if offset < 0 {
		return nil, errs.ErrInvalidInput
	}
	limit = ClampLimit(limit)

	opts := FindWithPagination(offset, limit, "created_at", -1)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, HandleMongoError(err, "activity")
	}
	defer cursor.Close(ctx)

	return decodeActivities(ctx, cursor)
}

// Count returns the total number of activities.
func (r *MongoActivityRepository) Count(ctx context.Context) (int, error) {
	count, err := CountAll(ctx, r.collection)
	if err != nil {
		return 0, HandleMongoError(err, "activity")
	}
	return count, nil
}

// Delete removes an activity.
func (r *MongoActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return HandleMongoError(err, "activity")
	}
	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *MongoActivityRepository) findMany(ctx context.Context, filter bson.M) ([]*activitydomain.Activity, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, HandleMongoError(err, "activity")
	}
	defer cursor.Close(ctx)

	return decodeActivities(ctx, cursor)
}

func decodeActivities(ctx context.Context, cursor *mongo.Cursor) ([]*activitydomain.Activity, error) {
	var activities []*activitydomain.Activity
	for cursor.Next(ctx) {
		var doc activityDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, HandleMongoError(err, "activity")
		}
		activities = append(activities, documentToActivity(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, HandleMongoError(err, "activity")
	}
	return activities, nil
}

func activityToDocument(a *activitydomain.Activity) *activityDocument {
	return &activityDocument{
		ID:          a.ID().String(),
		ThemeID:     a.ThemeID().String(),
		Name:        a.Name(),
		Description: a.Details().Description,
		URL:         a.Details().URL,
		Date:        a.Details().Date,
		CreatedAt:   a.CreatedAt(),
		UpdatedAt:   a.UpdatedAt(),
	}
}

func documentToActivity(doc *activityDocument) *activitydomain.Activity {
	return activitydomain.Reconstruct(
		uuid.UUID(doc.ID),
		uuid.UUID(doc.ThemeID),
		doc.Name,
		activitydomain.Details{
			Description: doc.Description,
			URL:         doc.URL,
			Date:        doc.Date,
		},
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

// Ensure MongoActivityRepository implements activity.Repository.
var _ activitydomain.Repository = (*MongoActivityRepository)(nil)
