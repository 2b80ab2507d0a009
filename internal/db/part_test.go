package db

import (
	"context"
	"testing"

	"github.com/agrodev/tractor-maintenance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoPartCollection_InsertPart(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_tractor_maintenance").Collection("parts")
	collection.Drop(context.Background())

	partCollection := &MongoPartCollection{Collection: collection}

	part := models.Part{
		PartName:          "oil filter",
		PartNumber:        "PN-1001",
		Quantity:          12,
		UnitPrice:         8.5,
		RemainingQuantity: 12,
	}

	id, err := partCollection.InsertPart(context.Background(), part)
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	var found models.Part
	err = collection.FindOne(context.Background(), bson.M{"_id": id}).Decode(&found)
	require.NoError(t, err)
	assert.Equal(t, "oil filter", found.PartName)
	assert.Equal(t, int64(12), found.RemainingQuantity)
	assert.NotZero(t, found.CreatedAt)
	assert.NotZero(t, found.UpdatedAt)
}

func TestMongoPartCollection_DecrementRemaining(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_tractor_maintenance").Collection("parts")
	collection.Drop(context.Background())

	partCollection := &MongoPartCollection{Collection: collection}

	id, err := partCollection.InsertPart(context.Background(), models.Part{
		PartName:          "belt",
		PartNumber:        "PN-2001",
		Quantity:          5,
		RemainingQuantity: 5,
	})
	require.NoError(t, err)

	err = partCollection.DecrementRemaining(context.Background(), id.Hex(), 3)
	require.NoError(t, err)

	part, err := partCollection.FindPartByID(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), part.RemainingQuantity)

	// overdraft is rejected without changing the document
	err = partCollection.DecrementRemaining(context.Background(), id.Hex(), 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	part, err = partCollection.FindPartByID(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), part.RemainingQuantity)
}

func TestMongoPartCollection_DecrementRemaining_NotFound(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_tractor_maintenance").Collection("parts")
	collection.Drop(context.Background())

	partCollection := &MongoPartCollection{Collection: collection}

	err = partCollection.DecrementRemaining(context.Background(), "64b000000000000000000000", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	err = partCollection.DecrementRemaining(context.Background(), "not-a-hex-id", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoPartCollection_UpdatePartInfo_PreservesRemaining(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_tractor_maintenance").Collection("parts")
	collection.Drop(context.Background())

	partCollection := &MongoPartCollection{Collection: collection}

	id, err := partCollection.InsertPart(context.Background(), models.Part{
		PartName:          "belt",
		PartNumber:        "PN-2001",
		Quantity:          10,
		RemainingQuantity: 10,
	})
	require.NoError(t, err)

	require.NoError(t, partCollection.DecrementRemaining(context.Background(), id.Hex(), 4))

	// update carries a stale RemainingQuantity; it must not be written
	err = partCollection.UpdatePartInfo(context.Background(), id.Hex(), models.Part{
		PartName:          "drive belt",
		PartNumber:        "PN-2001",
		Quantity:          10,
		UnitPrice:         19.99,
		RemainingQuantity: 10,
	})
	require.NoError(t, err)

	part, err := partCollection.FindPartByID(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "drive belt", part.PartName)
	assert.Equal(t, int64(6), part.RemainingQuantity)
}

func TestMongoPartCollection_DeletePart(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_tractor_maintenance").Collection("parts")
	collection.Drop(context.Background())

	partCollection := &MongoPartCollection{Collection: collection}

	id, err := partCollection.InsertPart(context.Background(), models.Part{
		PartName:   "belt",
		PartNumber: "PN-2001",
	})
	require.NoError(t, err)

	require.NoError(t, partCollection.DeletePart(context.Background(), id.Hex()))

	_, err = partCollection.FindPartByID(context.Background(), id.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	err = partCollection.DeletePart(context.Background(), id.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}
