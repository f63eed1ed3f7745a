package repositories

import (
	"context"

	"github.com/hugscape/storefront/internal/domain/entities"
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	Create(ctx context.Context, product *entities.Product) error

	// CreateBatch inserts all products in one transaction
	CreateBatch(ctx context.Context, products []*entities.Product) error

	// Update persists every attribute of an existing product.
	// Returns ErrProductNotFound when no row matches.
	Update(ctx context.Context, product *entities.Product) error

	// FindByID looks up a product regardless of active status
	FindByID(ctx context.Context, id string) (*entities.Product, bool, error)

	// ListActive returns active products ordered by creation time
	ListActive(ctx context.Context) ([]*entities.Product, error)

	// SetActive flips the active flag. Returns ErrProductNotFound when no row matches.
	SetActive(ctx context.Context, id string, active bool) error

	// SetStock overwrites the stock quantity. Returns ErrProductNotFound when no row matches.
	SetStock(ctx context.Context, id string, quantity int) error

	// Count returns the number of products, active or not
	Count(ctx context.Context) (int64, error)
}
