package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/themery/themery/internal/domain/errs"
	themedomain "github.com/themery/themery/internal/domain/theme"
	"github.com/themery/themery/internal/domain/uuid"
	"github.com/themery/themery/internal/infrastructure/outbox"
	"github.com/themery/themery/internal/integration"
)

// themeDocument is the MongoDB document for a theme.
type themeDocument struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Number     int       `bson:"number"`
	Letter     string    `bson:"letter"`
	StartDate  time.Time `bson:"start_date"`
	EndDate    time.Time `bson:"end_date"`
	CreatedBy  string    `bson:"created_by"`
	CreatedAt  time.Time `bson:"created_at"`
	ModifiedBy string    `bson:"modified_by"`
	ModifiedAt time.Time `bson:"modified_at"`
}

// MongoThemeRepository implements theme.Repository. Document writes and
// their outbox entries share one session transaction: either both are
// committed or neither, which is what lets the relay promise that every
// committed change is eventually published.
type MongoThemeRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	outboxColl *mongo.Collection
	logger     *slog.Logger
}

// ThemeRepoOption configures MongoThemeRepository.
type ThemeRepoOption func(*MongoThemeRepository)

// WithThemeRepoLogger sets the logger for the theme repository.
func WithThemeRepoLogger(logger *slog.Logger) ThemeRepoOption {
	return func(r *MongoThemeRepository) {
		r.logger = logger
	}
}

// NewMongoThemeRepository creates a new MongoDB theme repository.
func NewMongoThemeRepository(
	client *mongo.Client,
	collection *mongo.Collection,
	outboxColl *mongo.Collection,
	opts ...ThemeRepoOption,
) *MongoThemeRepository {
	r := &MongoThemeRepository{
		client:     client,
		collection: collection,
		outboxColl: outboxColl,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Save persists the aggregate and stages its buffered events in one
// transaction. The buffer is drained only after the commit succeeds.
func (r *MongoThemeRepository) Save(ctx context.Context, t *themedomain.Theme) error {
	doc := themeToDocument(t)

	outboxDocs, err := eventsToOutboxDocs(t)
	if err != nil {
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return HandleMongoError(err, "theme")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc context.Context) (any, error) {
		filter := bson.M{"_id": doc.ID}
		if _, replaceErr := r.collection.ReplaceOne(sc, filter, doc, ReplaceUpsertOptions()); replaceErr != nil {
			return nil, replaceErr
		}

		if len(outboxDocs) > 0 {
			if _, insertErr := r.outboxColl.InsertMany(sc, outboxDocs); insertErr != nil {
				return nil, insertErr
			}
		}

		return nil, nil
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save theme",
			slog.String("theme_id", t.ID().String()),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "theme")
	}

	t.ClearEvents()

	r.logger.DebugContext(ctx, "theme saved",
		slog.String("theme_id", t.ID().String()),
		slog.Int("staged_events", len(outboxDocs)),
	)

	return nil
}

// FindByID loads a theme by ID.
func (r *MongoThemeRepository) FindByID(ctx context.Context, id uuid.UUID) (*themedomain.Theme, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"_id": id.String()}
	var doc themeDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find theme by ID",
				slog.String("theme_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "theme")
	}

	return documentToTheme(&doc), nil
}

// FindByName returns themes whose name matches exactly.
func (r *MongoThemeRepository) FindByName(ctx context.Context, name string) ([]*themedomain.Theme, error) {
	if name == "" {
		return nil, errs.ErrInvalidInput
	}

	return r.findMany(ctx, bson.M{"name": name})
}

// FindByDate returns themes whose start/end range contains the date.
func (r *MongoThemeRepository) FindByDate(ctx context.Context, date time.Time) ([]*themedomain.Theme, error) {
	if date.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{
		"start_date": bson.M{"$lte": date},
		"end_date":   bson.M{"$gte": date},
	}
	return r.findMany(ctx, filter)
}

// List returns themes with pagination, newest first.
func (r *MongoThemeRepository) List(ctx context.Context, offset, limit int) ([]*themedomain.Theme, error) {
	if offset < 0 {
		return nil, errs.ErrInvalidInput
	}
	limit = ClampLimit(limit)

	opts := FindWithPagination(offset, limit, "created_at", -1)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, HandleMongoError(err, "theme")
	}
	defer cursor.Close(ctx)

	return decodeThemes(ctx, cursor)
}

// Count returns the total number of themes.
func (r *MongoThemeRepository) Count(ctx context.Context) (int, error) {
	count, err := CountAll(ctx, r.collection)
	if err != nil {
		return 0, HandleMongoError(err, "theme")
	}
	return count, nil
}

// Delete removes a theme and stages its deletion event in one transaction.
// Deletion does not pass through the aggregate, so the event is built here.
func (r *MongoThemeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	outboxDoc, err := outbox.NewDocument(integration.ThemeDeleted{ID: id})
	if err != nil {
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return HandleMongoError(err, "theme")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc context.Context) (any, error) {
		result, deleteErr := r.collection.DeleteOne(sc, bson.M{"_id": id.String()})
		if deleteErr != nil {
			return nil, deleteErr
		}
		if result.DeletedCount == 0 {
			return nil, mongo.ErrNoDocuments
		}

		if _, insertErr := r.outboxColl.InsertOne(sc, outboxDoc); insertErr != nil {
			return nil, insertErr
		}

		return nil, nil
	})
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to delete theme",
				slog.String("theme_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return HandleMongoError(err, "theme")
	}

	r.logger.InfoContext(ctx, "theme deleted",
		slog.String("theme_id", id.String()),
	)

	return nil
}

func (r *MongoThemeRepository) findMany(ctx context.Context, filter bson.M) ([]*themedomain.Theme, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, HandleMongoError(err, "theme")
	}
	defer cursor.Close(ctx)

	return decodeThemes(ctx, cursor)
}

func decodeThemes(ctx context.Context, cursor *mongo.Cursor) ([]*themedomain.Theme, error) {
	var themes []*themedomain.Theme
	for cursor.Next(ctx) {
		var doc themeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, HandleMongoError(err, "theme")
		}
		themes = append(themes, documentToTheme(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, HandleMongoError(err, "theme")
	}
	return themes, nil
}

func themeToDocument(t *themedomain.Theme) *themeDocument {
	return &themeDocument{
		ID:         t.ID().String(),
		Name:       t.Name(),
		Number:     t.Number(),
		Letter:     t.Letter(),
		StartDate:  t.StartDate(),
		EndDate:    t.EndDate(),
		CreatedBy:  t.CreatedBy(),
		CreatedAt:  t.CreatedAt(),
		ModifiedBy: t.ModifiedBy(),
		ModifiedAt: t.ModifiedAt(),
	}
}

func documentToTheme(doc *themeDocument) *themedomain.Theme {
	return themedomain.Reconstruct(
		uuid.UUID(doc.ID),
		doc.Name,
		doc.Number,
		doc.Letter,
		doc.StartDate,
		doc.EndDate,
		doc.CreatedBy,
		doc.CreatedAt,
		doc.ModifiedBy,
		doc.ModifiedAt,
	)
}

// eventsToOutboxDocs maps the aggregate's buffered events to outbox docs.
func eventsToOutboxDocs(t *themedomain.Theme) ([]any, error) {
	events := t.UncommittedEvents()
	if len(events) == 0 {
		return nil, nil
	}

	docs := make([]any, 0, len(events))
	for _, evt := range events {
		out, err := integration.FromDomainEvent(evt)
		if err != nil {
			return nil, err
		}
		doc, err := outbox.NewDocument(out)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Ensure MongoThemeRepository implements theme.Repository.
var _ themedomain.Repository = (*MongoThemeRepository)(nil)
