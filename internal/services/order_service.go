package services

import (
	"context"

	"tienda/internal/models"
	"tienda/internal/repositories"
)

// OrderService exposes the stored orders to the admin panel.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// ListOrders retrieves all orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return order, nil
}
