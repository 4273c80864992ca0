package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tienda/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Listing follows insertion order.
type MemoryProductRepository struct {
	products map[string]models.Product
	order    []string
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products.
func (r *MemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		productList = append(productList, r.products[id])
	}
	return productList, nil
}

// FindByIDs returns the products whose id is in ids.
func (r *MemoryProductRepository) FindByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	productList := make([]models.Product, 0, len(ids))
	for _, id := range r.order {
		if _, ok := wanted[id]; ok {
			productList = append(productList, r.products[id])
		}
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("failed to create product: duplicate ID %s", product.ID)
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	r.order = append(r.order, product.ID)
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	existing.Name = product.Name
	existing.Description = product.Description
	existing.Price = product.Price
	existing.Category = product.Category
	existing.Photo = product.Photo
	existing.UpdatedAt = time.Now()
	r.products[product.ID] = existing
	*product = existing
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return nil
	}
	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
