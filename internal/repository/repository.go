// Package repository implements storage.Store on MongoDB.
//
// Driver failures are reported as storage.ErrBackendUnavailable so the
// Hybrid coordinator can fall back. A caller that gives up on its own
// context gets the context error instead. Upserts read by natural key and then
// write; they are not atomic.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"turnping/internal/storage"
)

const (
	gameSessionsCollection  = "game_sessions"
	playerStatusCollection  = "player_statuses"
	subscriptionsCollection = "subscriptions"
)

// Store is the durable backend
type Store struct {
	gameSessions  *mongo.Collection
	statuses      *mongo.Collection
	subscriptions *mongo.Collection
	now           func() time.Time
}

var _ storage.Store = (*Store)(nil)

// NewStore binds the three collections of db
func NewStore(db *mongo.Database) *Store {
	return &Store{
		gameSessions:  db.Collection(gameSessionsCollection),
		statuses:      db.Collection(playerStatusCollection),
		subscriptions: db.Collection(subscriptionsCollection),
		now:           func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the natural-key lookup indexes. They are not
// unique: duplicates produced by concurrent upserts stay visible.
func (r *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll *mongo.Collection
		keys bson.D
	}{
		{r.gameSessions, bson.D{{Key: "code", Value: 1}}},
		{r.statuses, bson.D{{Key: "gameSessionId", Value: 1}, {Key: "steamId", Value: 1}}},
		{r.subscriptions, bson.D{{Key: "steamId", Value: 1}}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: idx.keys}); err != nil {
			return failure(ctx, "ensure indexes on "+idx.coll.Name(), err)
		}
	}
	return nil
}

// objectID parses a hex id. Ids this store did not issue cannot exist in it.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// failure classifies a driver error for op. Cancellation or expiry of the
// caller's ctx is not an outage and must not trip the fallback.
func failure(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return storage.Unavailable(op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// findOne decodes the single document matching filter into out.
// It reports false when nothing matched.
func findOne(ctx context.Context, coll *mongo.Collection, op string, filter bson.M, out any) (bool, error) {
	err := coll.FindOne(ctx, filter).Decode(out)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, failure(ctx, op, err)
	}
	return true, nil
}

// setByID applies $set to the document with oid and decodes the result
func setByID(ctx context.Context, coll *mongo.Collection, op string, oid primitive.ObjectID, set bson.M, out any) (bool, error) {
	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, returnAfter()).Decode(out)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, failure(ctx, op, err)
	}
	return true, nil
}
