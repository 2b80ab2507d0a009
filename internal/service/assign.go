package service

import (
	"context"
	"time"

	"github.com/agrodev/tractor-maintenance/internal/models"
	"github.com/agrodev/tractor-maintenance/internal/notify"

	log "github.com/sirupsen/logrus"
)

// AssignInput carries everything needed to bind a technician, a tractor and
// a parts list to a service request.
type AssignInput struct {
	TechnicianID    string
	RequestID       string // empty to create a new request
	TractorOwnerID  string
	MaintenanceTask string
	CommonProblem   string
	Priority        models.Priority
	Parts           []PartRequest
}

// Assign binds a technician, tractor and parts to a request and moves it to
// in-progress. Stock consumption is all-or-nothing: if any reduction fails,
// reductions already applied in the same call are compensated before the
// error is returned.
//
// Re-assigning an already-assigned request re-consumes the new parts list in
// full; the caller is responsible for not double-booking the same physical
// parts.
func (s *RequestService) Assign(ctx context.Context, in AssignInput) (*models.ServiceRequest, error) {
	if in.TechnicianID == "" {
		return nil, &ValidationError{Field: "technician_id", Reason: "required"}
	}
	if in.TractorOwnerID == "" {
		return nil, &ValidationError{Field: "tractor_owner_id", Reason: "required"}
	}
	if in.Priority != "" && !models.IsValidPriority(in.Priority) {
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

	usages, err := toPartUsages(in.Parts)
	if err != nil {
		return nil, err
	}

	// Resolve the target request before touching stock so reference errors
	// never require a rollback.
	var existing *models.ServiceRequest
	if in.RequestID != "" {
		existing, err = s.requests.FindRequestByID(ctx, in.RequestID)
		if err != nil {
			return nil, wrapNotFound("find service request", "service request", in.RequestID, err)
		}
		if existing.Status == models.StatusCompleted {
			return nil, &ValidationError{Field: "status", Reason: "cannot assign a completed request"}
		}
	}

	// Every part entry must resolve before consumption starts.
	for _, usage := range usages {
		if _, err := s.ledger.GetPart(ctx, usage.PartID.Hex()); err != nil {
			return nil, err
		}
	}

	// Consume stock in order; compensate in reverse on any failure.
	applied := make([]models.PartUsage, 0, len(usages))
	rollback := func() {
		for i := len(applied) - 1; i >= 0; i-- {
			u := applied[i]
			if err := s.ledger.Increase(ctx, u.PartID.Hex(), u.Quantity); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"part_id":  u.PartID.Hex(),
					"quantity": u.Quantity,
				}).Error("failed to compensate stock reduction")
			}
		}
	}

	for _, usage := range usages {
		if err := s.ledger.Reduce(ctx, usage.PartID.Hex(), usage.Quantity); err != nil {
			rollback()
			return nil, err
		}
		applied = append(applied, usage)
	}

	var result *models.ServiceRequest
	if existing != nil {
		existing.TechnicianID = technician.ID
		existing.TractorOwnerID = owner.ID
		existing.MaintenanceTask = in.MaintenanceTask
		existing.CommonProblem = in.CommonProblem
		// an unset priority keeps what the request already had
		if in.Priority != "" {
			existing.Priority = in.Priority
		}
		existing.Parts = usages
		existing.Status = models.StatusInProgress

		if err := s.requests.UpdateRequest(ctx, in.RequestID, *existing); err != nil {
			rollback()
			return nil, &PersistenceError{Op: "update service request", Err: err}
		}
		result, err = s.requests.FindRequestByID(ctx, in.RequestID)
		if err != nil {
			return nil, wrapNotFound("read assigned request", "service request", in.RequestID, err)
		}
	} else {
		slug, err := s.nextFreeSlug(ctx)
		if err != nil {
			rollback()
			return nil, err
		}
		priority := in.Priority
		if priority == "" {
			priority = models.PriorityMedium
		}
		req := models.ServiceRequest{
			Slug:            slug,
			Priority:        priority,
			TechnicianID:    technician.ID,
			TractorOwnerID:  owner.ID,
			MaintenanceTask: in.MaintenanceTask,
			CommonProblem:   in.CommonProblem,
			Parts:           usages,
			Status:          models.StatusInProgress,
			AssignedAt:      time.Now(),
		}
		id, err := s.requests.InsertRequest(ctx, req)
		if err != nil {
			rollback()
			return nil, &PersistenceError{Op: "insert service request", Err: err}
		}
		result, err = s.requests.FindRequestByID(ctx, id.Hex())
		if err != nil {
			return nil, wrapNotFound("read assigned request", "service request", id.Hex(), err)
		}
	}

	event := notify.AssignmentEvent{
		Slug:           result.Slug,
		TechnicianName: technician.FullName(),
		TractorID:      owner.TractorID,
		Priority:       string(result.Priority),
		AssignedAt:     result.AssignedAt,
	}
	if err := s.notifier.PublishAssignment(ctx, event); err != nil {
		// The assignment itself is committed; the notification layer can
		// resync from the request list.
		log.WithError(err).WithField("slug", result.Slug).Warn("failed to publish assignment event")
	}

	log.WithFields(log.Fields{
		"slug":       result.Slug,
		"technician": technician.FullName(),
		"tractor_id": owner.TractorID,
		"parts":      len(usages),
	}).Info("service request assigned")
	return result, nil
}
