package repositories

import (
	"context"

	"tienda/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are written once and never updated.
type OrderRepository interface {
	// GetAll returns every order, newest first.
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
}
