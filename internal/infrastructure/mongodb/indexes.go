// Package mongodb provides MongoDB infrastructure components including index management.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names as constants for consistency. Themes and their outbox
// live in the theme service database; activities and the theme projection
// live in the activity service database.
const (
	CollectionThemes           = "themes"
	CollectionThemeOutbox      = "theme_outbox"
	CollectionActivities       = "activities"
	CollectionThemeProjections = "theme_projections"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Collection string
	Keys       bson.D
	Options    *options.IndexOptionsBuilder
}

// createIndexes creates the given indexes on the database.
// Idempotent: calling it multiple times is safe.
func createIndexes(ctx context.Context, db *mongo.Database, indexes []IndexDefinition) error {
	for _, idx := range indexes {
		coll := db.Collection(idx.Collection)
		model := mongo.IndexModel{
			Keys:    idx.Keys,
			Options: idx.Options,
		}

		_, err := coll.Indexes().CreateOne(ctx, model)
		if err != nil {
			return fmt.Errorf("failed to create index on collection %s: %w", idx.Collection, err)
		}
	}

	return nil
}

// CreateThemeServiceIndexes creates the indexes for the theme service database.
func CreateThemeServiceIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, append(GetThemeIndexes(), GetOutboxIndexes()...))
}

// CreateActivityServiceIndexes creates the indexes for the activity service database.
func CreateActivityServiceIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, append(GetActivityIndexes(), GetThemeProjectionIndexes()...))
}

// GetThemeIndexes returns index definitions for the themes collection.
func GetThemeIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionThemes,
			Keys:       bson.D{{Key: "name", Value: 1}},
			Options:    options.Index().SetName("idx_themes_name"),
		},
		{
			// Serves the active-on-date lookup
			Collection: CollectionThemes,
			Keys:       bson.D{{Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}},
			Options:    options.Index().SetName("idx_themes_date_range"),
		},
		{
			Collection: CollectionThemes,
			Keys:       bson.D{{Key: "created_at", Value: -1}},
			Options:    options.Index().SetName("idx_themes_created_at"),
		},
	}
}

// GetOutboxIndexes returns index definitions for the theme outbox collection.
func GetOutboxIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Serves the relay's unprocessed-oldest-first poll
			Collection: CollectionThemeOutbox,
			Keys:       bson.D{{Key: "processed_at", Value: 1}, {Key: "created_at", Value: 1}},
			Options:    options.Index().SetName("idx_outbox_unprocessed_time"),
		},
		{
			Collection: CollectionThemeOutbox,
			Keys:       bson.D{{Key: "aggregate_id", Value: 1}},
			Options:    options.Index().SetName("idx_outbox_aggregate"),
		},
	}
}

// GetActivityIndexes returns index definitions for the activities collection.
func GetActivityIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionActivities,
			Keys:       bson.D{{Key: "theme_id", Value: 1}},
			Options:    options.Index().SetName("idx_activities_theme"),
		},
		{
			Collection: CollectionActivities,
			Keys:       bson.D{{Key: "name", Value: 1}},
			Options:    options.Index().SetName("idx_activities_name"),
		},
		{
			Collection: CollectionActivities,
			Keys:       bson.D{{Key: "created_at", Value: -1}},
			Options:    options.Index().SetName("idx_activities_created_at"),
		},
	}
}

// GetThemeProjectionIndexes returns index definitions for the theme projections collection.
func GetThemeProjectionIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionThemeProjections,
			Keys:       bson.D{{Key: "name", Value: 1}},
			Options:    options.Index().SetName("idx_theme_projections_name"),
		},
	}
}
