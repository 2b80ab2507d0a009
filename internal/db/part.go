package db

import (
	"context"
	"fmt"
	"time"

	"github.com/agrodev/tractor-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PartCollection defines the interface for part inventory operations.
//
// DecrementRemaining and IncrementRemaining are the only writers of
// remaining_quantity; UpdatePartInfo deliberately cannot touch it, so stock
// changes always go through the atomic paths.
type PartCollection interface {
	InsertPart(ctx context.Context, part models.Part) (primitive.ObjectID, error)
	FindPartByID(ctx context.Context, id string) (*models.Part, error)
	FindParts(ctx context.Context) ([]models.Part, error)
	UpdatePartInfo(ctx context.Context, id string, part models.Part) error
	DecrementRemaining(ctx context.Context, id string, amount int64) error
	IncrementRemaining(ctx context.Context, id string, amount int64) error
	DeletePart(ctx context.Context, id string) error
}

// MongoPartCollection implements PartCollection for MongoDB.
type MongoPartCollection struct {
	Collection *mongo.Collection
}

// InsertPart inserts a new part into the database.
func (c *MongoPartCollection) InsertPart(ctx context.Context, part models.Part) (primitive.ObjectID, error) {
	part.CreatedAt = time.Now()
	part.UpdatedAt = time.Now()

	res, err := c.Collection.InsertOne(ctx, part)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// FindPartByID finds a part by its ID.
func (c *MongoPartCollection) FindPartByID(ctx context.Context, id string) (*models.Part, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid part id %q", ErrNotFound, id)
	}

	var part models.Part
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&part)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: part %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &part, nil
}

// FindParts lists all registered parts.
func (c *MongoPartCollection) FindParts(ctx context.Context) ([]models.Part, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var parts []models.Part
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// UpdatePartInfo updates a part's descriptive fields. remaining_quantity is
// excluded so concurrent stock adjustments are never overwritten with a
// stale value.
func (c *MongoPartCollection) UpdatePartInfo(ctx context.Context, id string, part models.Part) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid part id %q", ErrNotFound, id)
	}

	update := bson.M{"$set": bson.M{
		"part_name":   part.PartName,
		"part_number": part.PartNumber,
		"quantity":    part.Quantity,
		"unit_price":  part.UnitPrice,
		"updated_at":  time.Now(),
	}}

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: part %s", ErrNotFound, id)
	}
	return nil
}

// DecrementRemaining atomically decreases remaining_quantity by amount. The
// sufficiency check and the write are a single conditional update, so two
// concurrent calls can never both pass the check against a stale read.
func (c *MongoPartCollection) DecrementRemaining(ctx context.Context, id string, amount int64) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid part id %q", ErrNotFound, id)
	}

	filter := bson.M{
		"_id":                objectID,
		"remaining_quantity": bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"remaining_quantity": -amount},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := c.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// No match means either the part is gone or the stock is too low.
		n, err := c.Collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: part %s", ErrNotFound, id)
		}
		return fmt.Errorf("%w: part %s", ErrInsufficientStock, id)
	}
	return nil
}

// IncrementRemaining increases remaining_quantity by amount unconditionally.
func (c *MongoPartCollection) IncrementRemaining(ctx context.Context, id string, amount int64) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid part id %q", ErrNotFound, id)
	}

	update := bson.M{
		"$inc": bson.M{"remaining_quantity": amount},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: part %s", ErrNotFound, id)
	}
	return nil
}

// DeletePart deletes a part by its ID. Requests referencing it keep their
// dangling references; reads resolve those tolerantly.
func (c *MongoPartCollection) DeletePart(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid part id %q", ErrNotFound, id)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: part %s", ErrNotFound, id)
	}
	return nil
}
