package db

import (
	"context"

	"github.com/agrodev/tractor-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterCollection defines the interface for named sequence operations.
type CounterCollection interface {
	// NextSequence increments the named counter and returns the new value.
	// The increment-and-read is a single atomic operation.
	NextSequence(ctx context.Context, name string) (int64, error)
}

// MongoCounterCollection implements CounterCollection for MongoDB.
type MongoCounterCollection struct {
	Collection *mongo.Collection
}

// NextSequence increments the named counter row with a single
// FindOneAndUpdate, upserting the row on first use. Concurrent callers each
// observe a distinct value.
func (c *MongoCounterCollection) NextSequence(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.Counter
	err := c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}
