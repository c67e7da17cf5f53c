package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation on create.
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError rejects an operation whose input or precondition does not
// hold. Recoverable: the actor corrects the condition and resubmits.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

// StockConflictError rejects a stock reservation that exceeds the quantity
// available at commit time.
type StockConflictError struct {
	ProductID string
	Requested int
	Available int
}

func (e StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// AuthorizationError rejects an action the actor's role or identity does not
// permit.
type AuthorizationError struct {
	Reason string
}

func (e AuthorizationError) Error() string { return e.Reason }
