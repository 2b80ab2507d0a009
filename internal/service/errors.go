package service

import (
	"errors"
	"fmt"

	"github.com/agrodev/tractor-maintenance/internal/db"
)

// ValidationError reports malformed or missing input. Not retryable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a reference to an entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InsufficientStockError reports a reduction that would drive a part's
// remaining quantity negative. Remaining is informational and may be -1 when
// the current level could not be read.
type InsufficientStockError struct {
	PartID    string
	Requested int64
	Remaining int64
}

func (e *InsufficientStockError) Error() string {
	if e.Remaining < 0 {
		return fmt.Sprintf("insufficient stock for part %s: requested %d", e.PartID, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for part %s: requested %d, remaining %d", e.PartID, e.Requested, e.Remaining)
}

// PersistenceError reports a storage failure. The owning operation guarantees
// it has not left inventory or request state partially mutated.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// wrapNotFound maps a db error to the typed taxonomy for lookups that can
// only fail with not-found or a storage fault.
func wrapNotFound(op, entity, id string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &PersistenceError{Op: op, Err: err}
}
