package service

import (
	"context"
	"errors"
	"time"

	"github.com/agrodev/tractor-maintenance/internal/db"
	"github.com/agrodev/tractor-maintenance/internal/models"
	"github.com/agrodev/tractor-maintenance/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"

	log "github.com/sirupsen/logrus"
)

// RequestService governs the service request lifecycle and assignment.
type RequestService struct {
	requests    db.ServiceRequestCollection
	technicians db.TechnicianCollection
	owners      db.TractorOwnerCollection
	ledger      *Ledger
	sequencer   *Sequencer
	notifier    notify.Notifier
}

// NewRequestService wires the lifecycle over its collaborators.
func NewRequestService(store *db.Store, ledger *Ledger, sequencer *Sequencer, notifier notify.Notifier) *RequestService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &RequestService{
		requests:    store.Requests,
		technicians: store.Technicians,
		owners:      store.Owners,
		ledger:      ledger,
		sequencer:   sequencer,
		notifier:    notifier,
	}
}

// PartRequest names a part and the quantity a request will consume.
type PartRequest struct {
	PartID   string `json:"part_id"`
	Quantity int64  `json:"quantity"`
}

// CreateServiceRequestInput carries the fields accepted at request creation.
type CreateServiceRequestInput struct {
	Slug            string // optional preset (e.g. import); auto-generated when empty
	Priority        models.Priority
	TechnicianID    string
	TractorOwnerID  string
	MaintenanceTask string
	CommonProblem   string
	Parts           []PartRequest
	Notes           string
}

// CreateServiceRequest registers a new request in the pending state. Parts
// listed here are not consumed; consumption happens at assignment.
func (s *RequestService) CreateServiceRequest(ctx context.Context, in CreateServiceRequestInput) (*models.ServiceRequest, error) {
	if in.TechnicianID == "" {
		return nil, &ValidationError{Field: "technician_id", Reason: "required"}
	}
	if in.TractorOwnerID == "" {
		return nil, &ValidationError{Field: "tractor_owner_id", Reason: "required"}
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(in.Priority) {
		return nil, &ValidationError{Field: "priority", Reason: "unknown value " + string(in.Priority)}
	}

	technician, err := s.technicians.FindTechnicianByID(ctx, in.TechnicianID)
	if err != nil {
		return nil, wrapNotFound("find technician", "technician", in.TechnicianID, err)
	}
	owner, err := s.owners.FindOwnerByID(ctx, in.TractorOwnerID)
	if err != nil {
		return nil, wrapNotFound("find tractor owner", "tractor owner", in.TractorOwnerID, err)
	}

	parts, err := toPartUsages(in.Parts)
	if err != nil {
		return nil, err
	}

	slug := in.Slug
	if slug != "" {
		if err := s.checkSlugFree(ctx, slug); err != nil {
			return nil, err
		}
	} else {
		slug, err = s.nextFreeSlug(ctx)
		if err != nil {
			return nil, err
		}
	}

	req := models.ServiceRequest{
		Slug:            slug,
		Priority:        in.Priority,
		TechnicianID:    technician.ID,
		TractorOwnerID:  owner.ID,
		MaintenanceTask: in.MaintenanceTask,
		CommonProblem:   in.CommonProblem,
		Parts:           parts,
		Status:          models.StatusPending,
		AssignedAt:      time.Now(),
		Notes:           in.Notes,
	}

	id, err := s.requests.InsertRequest(ctx, req)
	if err != nil {
		return nil, &PersistenceError{Op: "insert service request", Err: err}
	}

	created, err := s.requests.FindRequestByID(ctx, id.Hex())
	if err != nil {
		return nil, wrapNotFound("read created request", "service request", id.Hex(), err)
	}

	log.WithFields(log.Fields{
		"slug":       created.Slug,
		"request_id": id.Hex(),
		"priority":   created.Priority,
	}).Info("service request created")
	return created, nil
}

// checkSlugFree rejects a caller-supplied slug that is already taken.
func (s *RequestService) checkSlugFree(ctx context.Context, slug string) error {
	_, err := s.requests.FindRequestBySlug(ctx, slug)
	if err == nil {
		return &ValidationError{Field: "slug", Reason: "already in use: " + slug}
	}
	if !errors.Is(err, db.ErrNotFound) {
		return &PersistenceError{Op: "check slug", Err: err}
	}
	return nil
}

// nextFreeSlug draws from the sequencer, skipping values already taken by
// requests imported with preset slugs. The counter only moves forward, so the
// draw terminates once it clears the taken range.
func (s *RequestService) nextFreeSlug(ctx context.Context) (string, error) {
	for {
		slug, err := s.sequencer.NextSlug(ctx, ServiceRequestSequence)
		if err != nil {
			return "", err
		}
		_, err = s.requests.FindRequestBySlug(ctx, slug)
		if errors.Is(err, db.ErrNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", &PersistenceError{Op: "check slug", Err: err}
		}
	}
}

// UpdateServiceRequestInput whitelists the fields an update may change. The
// slug is immutable and has no field here.
type UpdateServiceRequestInput struct {
	Priority        *models.Priority      `json:"priority,omitempty"`
	Status          *models.RequestStatus `json:"status,omitempty"`
	TechnicianID    *string               `json:"technician_id,omitempty"`
	MaintenanceTask *string               `json:"maintenance_task,omitempty"`
	CommonProblem   *string               `json:"common_problem,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
}

// UpdateServiceRequest applies a partial update. Enum values are validated
// before anything is written; an invalid update leaves the record unchanged.
// A transition to completed stamps completed_at once; it is never cleared.
// Backward status transitions are rejected.
func (s *RequestService) UpdateServiceRequest(ctx context.Context, id string, in UpdateServiceRequestInput) (*models.ServiceRequest, error) {
	req, err := s.requests.FindRequestByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound("find service request", "service request", id, err)
	}

	if in.Priority != nil {
		if !models.IsValidPriority(*in.Priority) {
			return nil, &ValidationError{Field: "priority", Reason: "unknown value " + string(*in.Priority)}
		}
		req.Priority = *in.Priority
	}

	completing := false
	if in.Status != nil {
		if !models.IsValidStatus(*in.Status) {
			return nil, &ValidationError{Field: "status", Reason: "unknown value " + string(*in.Status)}
		}
		if !models.CanTransition(req.Status, *in.Status) {
			return nil, &ValidationError{
				Field:  "status",
				Reason: "cannot move from " + string(req.Status) + " to " + string(*in.Status),
			}
		}
		completing = *in.Status == models.StatusCompleted && req.Status != models.StatusCompleted
		req.Status = *in.Status
	}

	if in.TechnicianID != nil {
		technician, err := s.technicians.FindTechnicianByID(ctx, *in.TechnicianID)
		if err != nil {
			return nil, wrapNotFound("find technician", "technician", *in.TechnicianID, err)
		}
		req.TechnicianID = technician.ID
	}
	if in.MaintenanceTask != nil {
		req.MaintenanceTask = *in.MaintenanceTask
	}
	if in.CommonProblem != nil {
		req.CommonProblem = *in.CommonProblem
	}
	if in.Notes != nil {
		req.Notes = *in.Notes
	}

	if completing && req.CompletedAt == nil {
		now := time.Now()
		req.CompletedAt = &now
	}

	if err := s.requests.UpdateRequest(ctx, id, *req); err != nil {
		return nil, wrapNotFound("update service request", "service request", id, err)
	}

	if completing {
		s.recordCompletion(ctx, req)
	}

	return s.requests.FindRequestByID(ctx, id)
}

// recordCompletion appends the finished work to the tractor's service
// history. Best effort: a failure is logged, not surfaced, since the request
// itself already completed.
func (s *RequestService) recordCompletion(ctx context.Context, req *models.ServiceRequest) {
	description := req.MaintenanceTask
	if description == "" {
		description = req.CommonProblem
	}
	entry := models.ServiceEntry{
		Date:        time.Now(),
		Description: description,
		Status:      "completed",
	}
	if err := s.owners.AppendServiceHistory(ctx, req.TractorOwnerID.Hex(), entry); err != nil {
		log.WithError(err).WithField("slug", req.Slug).Warn("failed to record service history")
	}
}

// DeleteServiceRequest removes a request unconditionally. Parts already
// consumed stay consumed; deletion never restocks.
func (s *RequestService) DeleteServiceRequest(ctx context.Context, id string) error {
	if err := s.requests.DeleteRequest(ctx, id); err != nil {
		return wrapNotFound("delete service request", "service request", id, err)
	}
	log.WithField("request_id", id).Info("service request deleted")
	return nil
}

// ListServiceRequests returns requests newest-first, optionally filtered.
func (s *RequestService) ListServiceRequests(ctx context.Context, filter db.RequestFilter) ([]models.ServiceRequest, error) {
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		return nil, &ValidationError{Field: "status", Reason: "unknown value " + string(filter.Status)}
	}
	requests, err := s.requests.FindRequests(ctx, filter)
	if err != nil {
		return nil, wrapNotFound("list service requests", "service request", "", err)
	}
	return requests, nil
}

// ResolvedPart is a part reference with its resolution outcome. Missing is
// set instead of erroring when the part was deleted after assignment.
type ResolvedPart struct {
	PartID   string       `json:"part_id"`
	Quantity int64        `json:"quantity"`
	Part     *models.Part `json:"part,omitempty"`
	Missing  bool         `json:"missing"`
}

// ResolvedServiceRequest is a request with its references resolved.
type ResolvedServiceRequest struct {
	Request           models.ServiceRequest `json:"request"`
	Technician        *models.Technician    `json:"technician,omitempty"`
	TechnicianMissing bool                  `json:"technician_missing"`
	Tractor           *models.TractorOwner  `json:"tractor,omitempty"`
	TractorMissing    bool                  `json:"tractor_missing"`
	Parts             []ResolvedPart        `json:"parts"`
}

// GetServiceRequest returns a request with technician, tractor and part
// references resolved. Dangling references are reported, not fatal.
func (s *RequestService) GetServiceRequest(ctx context.Context, id string) (*ResolvedServiceRequest, error) {
	req, err := s.requests.FindRequestByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound("find service request", "service request", id, err)
	}

	resolved := &ResolvedServiceRequest{Request: *req}

	if technician, err := s.technicians.FindTechnicianByID(ctx, req.TechnicianID.Hex()); err == nil {
		resolved.Technician = technician
	} else {
		resolved.TechnicianMissing = true
	}
	if owner, err := s.owners.FindOwnerByID(ctx, req.TractorOwnerID.Hex()); err == nil {
		resolved.Tractor = owner
	} else {
		resolved.TractorMissing = true
	}

	resolved.Parts = make([]ResolvedPart, 0, len(req.Parts))
	for _, usage := range req.Parts {
		rp := ResolvedPart{PartID: usage.PartID.Hex(), Quantity: usage.Quantity}
		if part, err := s.ledger.GetPart(ctx, usage.PartID.Hex()); err == nil {
			rp.Part = part
		} else {
			rp.Missing = true
		}
		resolved.Parts = append(resolved.Parts, rp)
	}

	return resolved, nil
}

// toPartUsages validates and converts caller part references.
func toPartUsages(parts []PartRequest) ([]models.PartUsage, error) {
	usages := make([]models.PartUsage, 0, len(parts))
	for _, p := range parts {
		if p.Quantity < 1 {
			return nil, &ValidationError{Field: "parts", Reason: "quantity must be at least 1"}
		}
		objectID, err := primitive.ObjectIDFromHex(p.PartID)
		if err != nil {
			return nil, &ValidationError{Field: "parts", Reason: "invalid part id " + p.PartID}
		}
		usages = append(usages, models.PartUsage{PartID: objectID, Quantity: p.Quantity})
	}
	return usages, nil
}
