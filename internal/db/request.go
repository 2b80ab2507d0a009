package db

import (
	"context"
	"fmt"
	"time"

	"github.com/agrodev/tractor-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RequestFilter narrows a service request listing. Zero values match all.
type RequestFilter struct {
	Status         models.RequestStatus
	TechnicianID   string
	TractorOwnerID string
}

// ServiceRequestCollection defines the interface for service request data operations.
type ServiceRequestCollection interface {
	InsertRequest(ctx context.Context, req models.ServiceRequest) (primitive.ObjectID, error)
	FindRequestByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	FindRequestBySlug(ctx context.Context, slug string) (*models.ServiceRequest, error)
	FindRequests(ctx context.Context, filter RequestFilter) ([]models.ServiceRequest, error)
	UpdateRequest(ctx context.Context, id string, req models.ServiceRequest) error
	DeleteRequest(ctx context.Context, id string) error
}

// MongoServiceRequestCollection implements ServiceRequestCollection for MongoDB.
type MongoServiceRequestCollection struct {
	Collection *mongo.Collection
}

// InsertRequest inserts a service request record into the collection.
func (c *MongoServiceRequestCollection) InsertRequest(ctx context.Context, req models.ServiceRequest) (primitive.ObjectID, error) {
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()

	res, err := c.Collection.InsertOne(ctx, req)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// FindRequestByID finds a service request by its ID.
func (c *MongoServiceRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request id %q", ErrNotFound, id)
	}

	var req models.ServiceRequest
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: service request %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &req, nil
}

// FindRequestBySlug finds a service request by its slug.
func (c *MongoServiceRequestCollection) FindRequestBySlug(ctx context.Context, slug string) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	err := c.Collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: service request %s", ErrNotFound, slug)
		}
		return nil, err
	}
	return &req, nil
}

// FindRequests queries service requests, newest assignment first.
func (c *MongoServiceRequestCollection) FindRequests(ctx context.Context, filter RequestFilter) ([]models.ServiceRequest, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.TechnicianID != "" {
		objectID, err := primitive.ObjectIDFromHex(filter.TechnicianID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid technician id %q", ErrNotFound, filter.TechnicianID)
		}
		query["technician_id"] = objectID
	}
	if filter.TractorOwnerID != "" {
		objectID, err := primitive.ObjectIDFromHex(filter.TractorOwnerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid tractor owner id %q", ErrNotFound, filter.TractorOwnerID)
		}
		query["tractor_owner_id"] = objectID
	}

	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.ServiceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateRequest replaces a service request's mutable fields by ID.
func (c *MongoServiceRequestCollection) UpdateRequest(ctx context.Context, id string, req models.ServiceRequest) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid request id %q", ErrNotFound, id)
	}

	req.ID = objectID
	req.UpdatedAt = time.Now()

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": req})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: service request %s", ErrNotFound, id)
	}
	return nil
}

// DeleteRequest deletes a service request by its ID.
func (c *MongoServiceRequestCollection) DeleteRequest(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid request id %q", ErrNotFound, id)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: service request %s", ErrNotFound, id)
	}
	return nil
}
