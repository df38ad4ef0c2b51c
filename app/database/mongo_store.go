package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lysyi3m/liveblog-comb/app/feed"
)

const (
	timestampsCollection = "timestamps"
	pinnedCollection     = "pinned"
	snapshotsCollection  = "snapshots"
	snapshotID           = "liveblog"
)

// MongoStore keeps each capability in its own collection, keyed by slug.
type MongoStore struct {
	client     *mongo.Client
	timestamps *mongo.Collection
	pinned     *mongo.Collection
	snapshots  *mongo.Collection
}

type timestampDocument struct {
	Slug        string    `bson:"_id"`
	PublishedAt time.Time `bson:"published_at"`
}

type pinnedDocument struct {
	Slug             string `bson:"_id"`
	feed.PinnedEntry `bson:",inline"`
}

type snapshotDocument struct {
	ID      string     `bson:"_id"`
	State   feed.State `bson:"state"`
	SavedAt time.Time  `bson:"saved_at"`
}

func NewMongoStore(ctx context.Context, connectionString, databaseName string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	database := client.Database(databaseName)
	return &MongoStore{
		client:     client,
		timestamps: database.Collection(timestampsCollection),
		pinned:     database.Collection(pinnedCollection),
		snapshots:  database.Collection(snapshotsCollection),
	}, nil
}

func (s *MongoStore) Timestamp(ctx context.Context, slug string) (time.Time, bool, error) {
	var doc timestampDocument
	err := s.timestamps.FindOne(ctx, bson.M{"_id": slug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get timestamp: %w", err)
	}
	return doc.PublishedAt.UTC(), true, nil
}

// storedTime truncates ts to the millisecond precision of BSON dates.
func storedTime(ts time.Time) time.Time {
	return ts.UTC().Truncate(time.Millisecond)
}

// SaveTimestamp only sets the value when the document is inserted, so the
// first observation wins under concurrent writers.
func (s *MongoStore) SaveTimestamp(ctx context.Context, slug string, ts time.Time) error {
	filter := bson.M{"_id": slug}
	update := bson.M{"$setOnInsert": bson.M{"published_at": storedTime(ts)}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.timestamps.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save timestamp: %w", err)
	}
	return nil
}

func (s *MongoStore) Pinned(ctx context.Context, slug string) (feed.PinnedEntry, bool, error) {
	var doc pinnedDocument
	err := s.pinned.FindOne(ctx, bson.M{"_id": slug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return feed.PinnedEntry{}, false, nil
	}
	if err != nil {
		return feed.PinnedEntry{}, false, fmt.Errorf("failed to get pinned post: %w", err)
	}
	return doc.PinnedEntry, true, nil
}

func (s *MongoStore) SavePinned(ctx context.Context, slug string, entry feed.PinnedEntry) error {
	filter := bson.M{"_id": slug}
	update := bson.M{"$set": entry}
	opts := options.Update().SetUpsert(true)

	if _, err := s.pinned.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save pinned post: %w", err)
	}
	return nil
}

func (s *MongoStore) LoadSnapshot(ctx context.Context) (*feed.State, error) {
	var doc snapshotDocument
	err := s.snapshots.FindOne(ctx, bson.M{"_id": snapshotID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, feed.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &doc.State, nil
}

// SaveSnapshot replaces the whole document, which is atomic for readers.
func (s *MongoStore) SaveSnapshot(ctx context.Context, state *feed.State) error {
	doc := snapshotDocument{
		ID:      snapshotID,
		State:   *state,
		SavedAt: time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)

	if _, err := s.snapshots.ReplaceOne(ctx, bson.M{"_id": snapshotID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Health(ctx context.Context) map[string]interface{} {
	if err := s.client.Ping(ctx, nil); err != nil {
		return map[string]interface{}{"connected": false, "error": err.Error()}
	}

	stats := map[string]interface{}{"connected": true}
	if count, err := s.timestamps.EstimatedDocumentCount(ctx); err == nil {
		stats["timestamps"] = count
	}
	return stats
}
