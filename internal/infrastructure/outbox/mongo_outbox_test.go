package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/themery/themery/internal/domain/uuid"
	"github.com/themery/themery/internal/infrastructure/outbox"
	"github.com/themery/themery/internal/integration"
)

// setupTestCollection creates a test MongoDB collection.
// Skips the test if MongoDB is not available.
func setupTestCollection(t *testing.T) *mongo.Collection {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Skip("MongoDB not available for testing")
		return nil
	}

	if pingErr := client.Ping(ctx, nil); pingErr != nil {
		t.Skip("MongoDB not available for testing")
		return nil
	}

	dbName := "test_outbox_" + time.Now().Format("20060102150405")
	db := client.Database(dbName)
	collection := db.Collection("theme_outbox")

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	return collection
}

func TestNewDocument(t *testing.T) {
	id := uuid.NewUUID()
	doc, err := outbox.NewDocument(integration.ThemeCreated{ID: id, Name: "Autumn"})
	require.NoError(t, err)

	assert.Equal(t, integration.TopicThemeCreated, doc.Topic)
	assert.Equal(t, id.String(), doc.AggregateID)
	assert.NotEmpty(t, doc.ID)
	assert.NotEmpty(t, doc.EventID)
	assert.Nil(t, doc.ProcessedAt)
	assert.Zero(t, doc.RetryCount)

	decoded, err := integration.Decode(doc.Topic, doc.Payload)
	require.NoError(t, err)
	assert.Equal(t, integration.ThemeCreated{ID: id, Name: "Autumn"}, decoded)
}

func TestMongoOutbox_AddAndPoll(t *testing.T) {
	collection := setupTestCollection(t)
	if collection == nil {
		return
	}

	ob := outbox.NewMongoOutbox(collection)
	ctx := context.Background()

	id := uuid.NewUUID()
	err := ob.Add(ctx, integration.ThemeCreated{ID: id, Name: "Autumn"})
	require.NoError(t, err)

	count, err := collection.CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	entries, err := ob.Poll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, integration.TopicThemeCreated, entries[0].Topic)
	assert.Equal(t, id.String(), entries[0].AggregateID)
}

func TestMongoOutbox_AddBatch(t *testing.T) {
	collection := setupTestCollection(t)
	if collection == nil {
		return
	}

	ob := outbox.NewMongoOutbox(collection)
	ctx := context.Background()

	id := uuid.NewUUID()
	events := []integration.Event{
		integration.ThemeCreated{ID: id, Name: "Autumn"},
		integration.ThemeUpdated{ID: id, Name: "Winter"},
		integration.ThemeDeleted{ID: id},
	}

	err := ob.AddBatch(ctx, events)
	require.NoError(t, err)

	entries, err := ob.Poll(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestMongoOutbox_MarkProcessed(t *testing.T) {
	collection := setupTestCollection(t)
	if collection == nil {
		return
	}

	ob := outbox.NewMongoOutbox(collection)
	ctx := context.Background()

	err := ob.Add(ctx, integration.ThemeCreated{ID: uuid.NewUUID(), Name: "Autumn"})
	require.NoError(t, err)

	entries, err := ob.Poll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	err = ob.MarkProcessed(ctx, entries[0].ID)
	require.NoError(t, err)

	entries, err = ob.Poll(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMongoOutbox_MarkFailed(t *testing.T) {
	collection := setupTestCollection(t)
	if collection == nil {
		return
	}

	ob := outbox.NewMongoOutbox(collection)
	ctx := context.Background()

	err := ob.Add(ctx, integration.ThemeCreated{ID: uuid.NewUUID(), Name: "Autumn"})
	require.NoError(t, err)

	entries, err := ob.Poll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	err = ob.MarkFailed(ctx, entries[0].ID, errors.New("bus unavailable"))
	require.NoError(t, err)

	// still unprocessed, retry count bumped
	entries, err = ob.Poll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].RetryCount)
	assert.Equal(t, "bus unavailable", entries[0].LastError)
}

func TestMongoOutbox_CountAndStats(t *testing.T) {
	collection := setupTestCollection(t)
	if collection == nil {
		return
	}

	ob := outbox.NewMongoOutbox(collection)
	ctx := context.Background()

	count, err := ob.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = ob.Add(ctx, integration.ThemeCreated{ID: uuid.NewUUID(), Name: "Autumn"})
	require.NoError(t, err)

	count, oldest, err := ob.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.False(t, oldest.IsZero())
}

func TestMongoOutbox_Cleanup(t *testing.T) {
	collection := setupTestCollection(t)
	if collection == nil {
		return
	}

	ob := outbox.NewMongoOutbox(collection)
	ctx := context.Background()

	err := ob.Add(ctx, integration.ThemeCreated{ID: uuid.NewUUID(), Name: "Autumn"})
	require.NoError(t, err)

	entries, err := ob.Poll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	err = ob.MarkProcessed(ctx, entries[0].ID)
	require.NoError(t, err)

	// entry was processed just now, a zero retention removes it
	deleted, err := ob.Cleanup(ctx, -time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
