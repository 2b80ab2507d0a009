package service

import (
	"context"
	"errors"

	"github.com/agrodev/tractor-maintenance/internal/db"
	"github.com/agrodev/tractor-maintenance/internal/models"
	log "github.com/sirupsen/logrus"
)

// AdjustDirection selects which way a relative stock adjustment goes.
type AdjustDirection string

const (
	AdjustReduce   AdjustDirection = "reduce"
	AdjustIncrease AdjustDirection = "increase"
)

// Ledger is the single source of truth for available stock per part. All
// stock mutation goes through Reduce/Increase, which are atomic per part.
type Ledger struct {
	parts db.PartCollection
}

// NewLedger creates a ledger over a part collection.
func NewLedger(parts db.PartCollection) *Ledger {
	return &Ledger{parts: parts}
}

// CreatePartInput carries the fields for part registration.
type CreatePartInput struct {
	PartName          string
	PartNumber        string
	Quantity          int64
	UnitPrice         float64
	RemainingQuantity *int64 // optional preset; defaults to Quantity
}

// CreatePart registers a part. Remaining stock starts equal to the nominal
// quantity unless an explicit preset is given.
func (l *Ledger) CreatePart(ctx context.Context, in CreatePartInput) (*models.Part, error) {
	if in.PartName == "" {
		return nil, &ValidationError{Field: "part_name", Reason: "required"}
	}
	if in.PartNumber == "" {
		return nil, &ValidationError{Field: "part_number", Reason: "required"}
	}
	if in.Quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if in.UnitPrice < 0 {
		return nil, &ValidationError{Field: "unit_price", Reason: "must not be negative"}
	}

	remaining := in.Quantity
	if in.RemainingQuantity != nil {
		if *in.RemainingQuantity < 0 {
			return nil, &ValidationError{Field: "remaining_quantity", Reason: "must not be negative"}
		}
		remaining = *in.RemainingQuantity
	}

	part := models.Part{
		PartName:          in.PartName,
		PartNumber:        in.PartNumber,
		Quantity:          in.Quantity,
		UnitPrice:         in.UnitPrice,
		RemainingQuantity: remaining,
	}

	id, err := l.parts.InsertPart(ctx, part)
	if err != nil {
		return nil, &PersistenceError{Op: "insert part", Err: err}
	}

	created, err := l.parts.FindPartByID(ctx, id.Hex())
	if err != nil {
		return nil, wrapNotFound("read created part", "part", id.Hex(), err)
	}

	log.WithFields(log.Fields{
		"part_id":     id.Hex(),
		"part_number": created.PartNumber,
		"remaining":   created.RemainingQuantity,
	}).Info("part registered")
	return created, nil
}

// GetPart returns a part by ID.
func (l *Ledger) GetPart(ctx context.Context, id string) (*models.Part, error) {
	part, err := l.parts.FindPartByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound("find part", "part", id, err)
	}
	return part, nil
}

// ListParts returns all registered parts.
func (l *Ledger) ListParts(ctx context.Context) ([]models.Part, error) {
	parts, err := l.parts.FindParts(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list parts", Err: err}
	}
	return parts, nil
}

// PartFields are the absolute, non-stock fields a part update may change.
// Remaining quantity is deliberately absent; AdjustQuantity is the only
// relative path and the atomic ledger operations are the only writers.
type PartFields struct {
	PartName   *string
	PartNumber *string
	Quantity   *int64
	UnitPrice  *float64
}

// SetPartFields overwrites the given descriptive fields of a part.
func (l *Ledger) SetPartFields(ctx context.Context, id string, fields PartFields) (*models.Part, error) {
	part, err := l.parts.FindPartByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound("find part", "part", id, err)
	}

	if fields.PartName != nil {
		if *fields.PartName == "" {
			return nil, &ValidationError{Field: "part_name", Reason: "must not be empty"}
		}
		part.PartName = *fields.PartName
	}
	if fields.PartNumber != nil {
		if *fields.PartNumber == "" {
			return nil, &ValidationError{Field: "part_number", Reason: "must not be empty"}
		}
		part.PartNumber = *fields.PartNumber
	}
	if fields.Quantity != nil {
		if *fields.Quantity < 0 {
			return nil, &ValidationError{Field: "quantity", Reason: "must not be negative"}
		}
		part.Quantity = *fields.Quantity
	}
	if fields.UnitPrice != nil {
		if *fields.UnitPrice < 0 {
			return nil, &ValidationError{Field: "unit_price", Reason: "must not be negative"}
		}
		part.UnitPrice = *fields.UnitPrice
	}

	if err := l.parts.UpdatePartInfo(ctx, id, *part); err != nil {
		return nil, wrapNotFound("update part", "part", id, err)
	}
	return l.GetPart(ctx, id)
}

// Reduce decreases a part's remaining quantity by amount. It fails with
// InsufficientStockError when the stock cannot cover the amount, leaving the
// quantity unchanged.
func (l *Ledger) Reduce(ctx context.Context, id string, amount int64) error {
	if amount < 1 {
		return &ValidationError{Field: "amount", Reason: "must be at least 1"}
	}

	err := l.parts.DecrementRemaining(ctx, id, amount)
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return &NotFoundError{Entity: "part", ID: id}
	}
	if errors.Is(err, db.ErrInsufficientStock) {
		remaining := int64(-1)
		if part, readErr := l.parts.FindPartByID(ctx, id); readErr == nil {
			remaining = part.RemainingQuantity
		}
		return &InsufficientStockError{PartID: id, Requested: amount, Remaining: remaining}
	}
	return &PersistenceError{Op: "reduce stock", Err: err}
}

// Increase raises a part's remaining quantity by amount. Used for returns and
// restocking; always succeeds if the part exists.
func (l *Ledger) Increase(ctx context.Context, id string, amount int64) error {
	if amount < 1 {
		return &ValidationError{Field: "amount", Reason: "must be at least 1"}
	}

	if err := l.parts.IncrementRemaining(ctx, id, amount); err != nil {
		return wrapNotFound("increase stock", "part", id, err)
	}
	return nil
}

// AdjustQuantity dispatches a relative stock change to Reduce or Increase.
func (l *Ledger) AdjustQuantity(ctx context.Context, id string, amount int64, direction AdjustDirection) error {
	switch direction {
	case AdjustReduce:
		return l.Reduce(ctx, id, amount)
	case AdjustIncrease:
		return l.Increase(ctx, id, amount)
	default:
		return &ValidationError{Field: "direction", Reason: "must be \"reduce\" or \"increase\""}
	}
}

// DeletePart removes a part record entirely. Historical requests referencing
// it keep dangling references, which reads tolerate.
func (l *Ledger) DeletePart(ctx context.Context, id string) error {
	if err := l.parts.DeletePart(ctx, id); err != nil {
		return wrapNotFound("delete part", "part", id, err)
	}
	log.WithField("part_id", id).Info("part deleted")
	return nil
}
