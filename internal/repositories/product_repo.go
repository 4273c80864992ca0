package repositories

import (
	"context"

	"tienda/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	// FindByIDs returns the products matching ids. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update overwrites the editable fields of an existing product and
	// refreshes product with the stored record.
	Update(ctx context.Context, product *models.Product) error
	// Delete removes a product. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
