package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Part represents a spare part held in hub inventory.
type Part struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PartName          string             `json:"part_name" bson:"part_name"`
	PartNumber        string             `json:"part_number" bson:"part_number"`
	Quantity          int64              `json:"quantity" bson:"quantity"` // nominal registered stock
	UnitPrice         float64            `json:"unit_price" bson:"unit_price"` // in USD
	RemainingQuantity int64              `json:"remaining_quantity" bson:"remaining_quantity"` // consumable stock, never negative
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}
