package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Technician represents a maintenance technician attached to a hub.
type Technician struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName       string             `json:"first_name" bson:"first_name"`
	LastName        string             `json:"last_name" bson:"last_name"`
	Email           string             `json:"email" bson:"email"`
	Phone           string             `json:"phone" bson:"phone"`
	Specialty       string             `json:"specialty" bson:"specialty"` // "engine", "hydraulics", "electrical", "general"
	ExperienceYears int                `json:"experience_years" bson:"experience_years"`
	Certifications  []string           `json:"certifications" bson:"certifications"`
	Status          string             `json:"status" bson:"status"`             // "active" or "inactive"
	Availability    string             `json:"availability" bson:"availability"` // free text, defaults to "available"
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// FullName returns the technician's display name.
func (t *Technician) FullName() string {
	if t.FirstName == "" {
		return t.LastName
	}
	if t.LastName == "" {
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}
