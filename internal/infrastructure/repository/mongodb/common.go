// Package mongodb contains the MongoDB repository implementations.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/themery/themery/internal/domain/errs"
)

const (
	// DefaultPaginationLimit is the default query page size.
	DefaultPaginationLimit = 50

	// MaxPaginationLimit caps the query page size.
	MaxPaginationLimit = 200
)

// HandleMongoError maps a MongoDB error to a domain error.
// Returns:
//   - nil if err == nil
//   - errs.ErrNotFound when no document matched
//   - errs.ErrAlreadyExists on a unique constraint violation
//   - a wrapped error otherwise
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}

	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// UpsertOptions returns the standard options for upsert operations.
func UpsertOptions() *options.UpdateOneOptionsBuilder {
	return options.UpdateOne().SetUpsert(true)
}

// ReplaceUpsertOptions returns the standard options for replace upserts.
func ReplaceUpsertOptions() *options.ReplaceOptionsBuilder {
	return options.Replace().SetUpsert(true)
}

// FindWithPagination returns find options with pagination and sorting.
// sortOrder is 1 for ascending and -1 for descending.
func FindWithPagination(offset, limit int, sortField string, sortOrder int) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
}

// ClampLimit normalizes a requested page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaginationLimit
	}
	if limit > MaxPaginationLimit {
		return MaxPaginationLimit
	}
	return limit
}

// CountAll counts every document in the collection.
func CountAll(ctx context.Context, coll *mongo.Collection) (int, error) {
	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
