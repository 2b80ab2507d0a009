package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// ServiceEntry is one line of a tractor's service history or upcoming-service plan.
type ServiceEntry struct {
	Date        time.Time `json:"date" bson:"date"`
	Description string    `json:"description" bson:"description"`
	Status      string    `json:"status" bson:"status"` // "scheduled", "completed", "cancelled"
}

// TractorInfo holds the operational state of an owner's tractor.
type TractorInfo struct {
	Hours            float64        `json:"hours" bson:"hours"` // engine hours
	PartsNeeded      bool           `json:"parts_needed" bson:"parts_needed"`
	ServiceHistory   []ServiceEntry `json:"service_history" bson:"service_history"`
	UpcomingServices []ServiceEntry `json:"upcoming_services" bson:"upcoming_services"`
}

// TractorOwner combines an owner's contact record with their fleet asset.
type TractorOwner struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName   string             `json:"first_name" bson:"first_name"`
	LastName    string             `json:"last_name" bson:"last_name"`
	Email       string             `json:"email" bson:"email"`
	Phone       string             `json:"phone" bson:"phone"`
	Address     string             `json:"address" bson:"address"`
	TractorID   string             `json:"tractor_id" bson:"tractor_id"` // unique per fleet asset
	TractorInfo *TractorInfo       `json:"tractor_info,omitempty" bson:"tractor_info,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
