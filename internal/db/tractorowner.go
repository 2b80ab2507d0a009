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

// TractorOwnerCollection defines the interface for tractor owner data operations.
type TractorOwnerCollection interface {
	InsertOwner(ctx context.Context, owner models.TractorOwner) (primitive.ObjectID, error)
	FindOwnerByID(ctx context.Context, id string) (*models.TractorOwner, error)
	FindOwnerByTractorID(ctx context.Context, tractorID string) (*models.TractorOwner, error)
	FindOwners(ctx context.Context) ([]models.TractorOwner, error)
	UpdateOwner(ctx context.Context, id string, owner models.TractorOwner) error
	AppendServiceHistory(ctx context.Context, id string, entry models.ServiceEntry) error
	DeleteOwner(ctx context.Context, id string) error
}

// MongoTractorOwnerCollection implements TractorOwnerCollection for MongoDB.
type MongoTractorOwnerCollection struct {
	Collection *mongo.Collection
}

// InsertOwner inserts a tractor owner record into the collection.
func (c *MongoTractorOwnerCollection) InsertOwner(ctx context.Context, owner models.TractorOwner) (primitive.ObjectID, error) {
	owner.CreatedAt = time.Now()
	owner.UpdatedAt = time.Now()

	res, err := c.Collection.InsertOne(ctx, owner)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// FindOwnerByID finds a tractor owner by their ID.
func (c *MongoTractorOwnerCollection) FindOwnerByID(ctx context.Context, id string) (*models.TractorOwner, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tractor owner id %q", ErrNotFound, id)
	}

	var owner models.TractorOwner
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&owner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: tractor owner %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &owner, nil
}

// FindOwnerByTractorID finds an owner by their unique tractor identifier.
func (c *MongoTractorOwnerCollection) FindOwnerByTractorID(ctx context.Context, tractorID string) (*models.TractorOwner, error) {
	var owner models.TractorOwner
	err := c.Collection.FindOne(ctx, bson.M{"tractor_id": tractorID}).Decode(&owner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: tractor %s", ErrNotFound, tractorID)
		}
		return nil, err
	}
	return &owner, nil
}

// FindOwners lists all tractor owners.
func (c *MongoTractorOwnerCollection) FindOwners(ctx context.Context) ([]models.TractorOwner, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var owners []models.TractorOwner
	if err := cursor.All(ctx, &owners); err != nil {
		return nil, err
	}
	return owners, nil
}

// UpdateOwner updates a tractor owner by their ID.
func (c *MongoTractorOwnerCollection) UpdateOwner(ctx context.Context, id string, owner models.TractorOwner) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid tractor owner id %q", ErrNotFound, id)
	}

	owner.ID = objectID
	owner.UpdatedAt = time.Now()

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": owner})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: tractor owner %s", ErrNotFound, id)
	}
	return nil
}

// AppendServiceHistory pushes one entry onto the owner's service history.
func (c *MongoTractorOwnerCollection) AppendServiceHistory(ctx context.Context, id string, entry models.ServiceEntry) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid tractor owner id %q", ErrNotFound, id)
	}

	update := bson.M{
		"$push": bson.M{"tractor_info.service_history": entry},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: tractor owner %s", ErrNotFound, id)
	}
	return nil
}

// DeleteOwner deletes a tractor owner by their ID.
func (c *MongoTractorOwnerCollection) DeleteOwner(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid tractor owner id %q", ErrNotFound, id)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: tractor owner %s", ErrNotFound, id)
	}
	return nil
}
