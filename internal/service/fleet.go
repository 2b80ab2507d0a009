package service

import (
	"context"

	"github.com/agrodev/tractor-maintenance/internal/db"
	"github.com/agrodev/tractor-maintenance/internal/models"
)

// FleetService manages technician and tractor owner records. Both have
// independent lifecycles; requests reference them, never copy them.
type FleetService struct {
	technicians db.TechnicianCollection
	owners      db.TractorOwnerCollection
}

// NewFleetService creates a fleet service over the registry collections.
func NewFleetService(store *db.Store) *FleetService {
	return &FleetService{technicians: store.Technicians, owners: store.Owners}
}

// CreateTechnician registers a technician. Status defaults to active and
// availability to "available".
func (s *FleetService) CreateTechnician(ctx context.Context, tech models.Technician) (*models.Technician, error) {
	if tech.FirstName == "" && tech.LastName == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if tech.ExperienceYears < 0 {
		return nil, &ValidationError{Field: "experience_years", Reason: "must not be negative"}
	}
	if tech.Status == "" {
		tech.Status = "active"
	}
	if tech.Status != "active" && tech.Status != "inactive" {
		return nil, &ValidationError{Field: "status", Reason: "unknown value " + tech.Status}
	}
	if tech.Availability == "" {
		tech.Availability = "available"
	}

	id, err := s.technicians.InsertTechnician(ctx, tech)
	if err != nil {
		return nil, &PersistenceError{Op: "insert technician", Err: err}
	}
	created, err := s.technicians.FindTechnicianByID(ctx, id.Hex())
	if err != nil {
		return nil, wrapNotFound("read created technician", "technician", id.Hex(), err)
	}
	return created, nil
}

// GetTechnician returns a technician by ID.
func (s *FleetService) GetTechnician(ctx context.Context, id string) (*models.Technician, error) {
	tech, err := s.technicians.FindTechnicianByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound("find technician", "technician", id, err)
	}
	return tech, nil
}

// ListTechnicians returns all technicians.
func (s *FleetService) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	techs, err := s.technicians.FindTechnicians(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list technicians", Err: err}
	}
	return techs, nil
}

// CreateTractorOwner registers an owner with their fleet asset.
func (s *FleetService) CreateTractorOwner(ctx context.Context, owner models.TractorOwner) (*models.TractorOwner, error) {
	if owner.FirstName == "" && owner.LastName == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if owner.TractorID == "" {
		return nil, &ValidationError{Field: "tractor_id", Reason: "required"}
	}
	// tractor_id is unique across the fleet
	if _, err := s.owners.FindOwnerByTractorID(ctx, owner.TractorID); err == nil {
		return nil, &ValidationError{Field: "tractor_id", Reason: "already registered: " + owner.TractorID}
	}

	id, err := s.owners.InsertOwner(ctx, owner)
	if err != nil {
		return nil, &PersistenceError{Op: "insert tractor owner", Err: err}
	}
	created, err := s.owners.FindOwnerByID(ctx, id.Hex())
	if err != nil {
		return nil, wrapNotFound("read created tractor owner", "tractor owner", id.Hex(), err)
	}
	return created, nil
}

// GetTractorOwner returns an owner by ID.
func (s *FleetService) GetTractorOwner(ctx context.Context, id string) (*models.TractorOwner, error) {
	owner, err := s.owners.FindOwnerByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound("find tractor owner", "tractor owner", id, err)
	}
	return owner, nil
}

// ListTractorOwners returns all owners.
func (s *FleetService) ListTractorOwners(ctx context.Context) ([]models.TractorOwner, error) {
	owners, err := s.owners.FindOwners(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list tractor owners", Err: err}
	}
	return owners, nil
}
