package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// RequestStatus represents the lifecycle state of a service request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in-progress"
	StatusCompleted  RequestStatus = "completed"
)

// Priority represents the urgency of a service request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PartUsage references an inventory part and the quantity a request consumes.
type PartUsage struct {
	PartID   primitive.ObjectID `json:"part_id" bson:"part_id"`
	Quantity int64              `json:"quantity" bson:"quantity"` // always >= 1
}

// ServiceRequest is the central coordination record between owners, technicians and hub leads.
type ServiceRequest struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Slug            string             `json:"slug" bson:"slug"` // e.g. "SR-007"; unique, immutable after creation
	Priority        Priority           `json:"priority" bson:"priority"`
	TechnicianID    primitive.ObjectID `json:"technician_id" bson:"technician_id"`
	TractorOwnerID  primitive.ObjectID `json:"tractor_owner_id" bson:"tractor_owner_id"`
	MaintenanceTask string             `json:"maintenance_task" bson:"maintenance_task"`
	CommonProblem   string             `json:"common_problem" bson:"common_problem"`
	Parts           []PartUsage        `json:"parts" bson:"parts"`
	Status          RequestStatus      `json:"status" bson:"status"`
	AssignedAt      time.Time          `json:"assigned_at" bson:"assigned_at"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty" bson:"completed_at,omitempty"` // set once, never cleared
	Notes           string             `json:"notes" bson:"notes"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsValidStatus checks if a status value is one of the known lifecycle states.
func IsValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidPriority checks if a priority value is one of the known levels.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// statusRank orders lifecycle states so transitions can be compared.
func statusRank(s RequestStatus) int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return -1
	}
}

// CanTransition reports whether a status change is allowed. The lifecycle only
// moves forward: pending -> in-progress -> completed. Writing the same status
// again is allowed.
func CanTransition(from, to RequestStatus) bool {
	fromRank, toRank := statusRank(from), statusRank(to)
	if fromRank < 0 || toRank < 0 {
		return false
	}
	return toRank >= fromRank
}
