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

// TechnicianCollection defines the interface for technician data operations.
type TechnicianCollection interface {
	InsertTechnician(ctx context.Context, tech models.Technician) (primitive.ObjectID, error)
	FindTechnicianByID(ctx context.Context, id string) (*models.Technician, error)
	FindTechnicians(ctx context.Context) ([]models.Technician, error)
	UpdateTechnician(ctx context.Context, id string, tech models.Technician) error
	DeleteTechnician(ctx context.Context, id string) error
}

// MongoTechnicianCollection implements TechnicianCollection for MongoDB.
type MongoTechnicianCollection struct {
	Collection *mongo.Collection
}

// InsertTechnician inserts a technician record into the collection.
func (c *MongoTechnicianCollection) InsertTechnician(ctx context.Context, tech models.Technician) (primitive.ObjectID, error) {
	tech.CreatedAt = time.Now()
	tech.UpdatedAt = time.Now()

	res, err := c.Collection.InsertOne(ctx, tech)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// FindTechnicianByID finds a technician by their ID.
func (c *MongoTechnicianCollection) FindTechnicianByID(ctx context.Context, id string) (*models.Technician, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid technician id %q", ErrNotFound, id)
	}

	var tech models.Technician
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&tech)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: technician %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &tech, nil
}

// FindTechnicians lists all technicians.
func (c *MongoTechnicianCollection) FindTechnicians(ctx context.Context) ([]models.Technician, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var techs []models.Technician
	if err := cursor.All(ctx, &techs); err != nil {
		return nil, err
	}
	return techs, nil
}

// UpdateTechnician updates a technician by their ID.
func (c *MongoTechnicianCollection) UpdateTechnician(ctx context.Context, id string, tech models.Technician) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid technician id %q", ErrNotFound, id)
	}

	tech.ID = objectID
	tech.UpdatedAt = time.Now()

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": tech})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: technician %s", ErrNotFound, id)
	}
	return nil
}

// DeleteTechnician deletes a technician by their ID.
func (c *MongoTechnicianCollection) DeleteTechnician(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid technician id %q", ErrNotFound, id)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: technician %s", ErrNotFound, id)
	}
	return nil
}
