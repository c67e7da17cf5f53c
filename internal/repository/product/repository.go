package product

import (
	"context"

	"plugdrop/internal/domain"
)

// Repository persists catalog products. Stock reservation and release are
// not part of this interface: they belong to the order repository's
// transaction boundary.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
