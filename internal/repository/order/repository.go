package order

import (
	"context"

	"plugdrop/internal/domain"
)

// Filter narrows List results. Zero fields are ignored.
type Filter struct {
	CustomerID string
	CourierID  string
	Status     domain.OrderStatus
}

// Repository persists orders and owns every multi-entity transaction in the
// system. Each mutating method re-checks its precondition against current
// state inside the store boundary, so callers' earlier reads may be stale
// without risking a lost update or a negative stock.
type Repository interface {
	// Create reserves stock for every line and persists the order
	// atomically: a StockConflictError on any line leaves both catalog
	// and orders untouched.
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f Filter) ([]domain.Order, error)
	// UpdateStatus moves the order from one status to another in a single
	// conditional mutation. A non-empty courierID is assigned alongside.
	// Fails with a ValidationError when the order is no longer in `from`.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, courierID string) error
	// Cancel releases the reserved stock and marks the order cancelled.
	// Only valid while the order is still open.
	Cancel(ctx context.Context, id string) error
	// AppendMessage adds a chat entry unless the order reached a terminal
	// status.
	AppendMessage(ctx context.Context, id string, msg domain.ChatMessage) error
	// Delete removes the order and its chat outright. Administrative
	// purge: reserved stock is not released.
	Delete(ctx context.Context, id string) error
}
