package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tienda/internal/models"

	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
type MemoryOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders, newest first.
func (r *MemoryOrderRepository) GetAll(_ context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	sort.SliceStable(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	stored := *order
	stored.Items = append([]models.LineItem(nil), order.Items...)
	r.orders[order.ID] = stored
	return nil
}
