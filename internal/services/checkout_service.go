package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"tienda/internal/cart"
	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// OrderCreatedRoutingKey is the routing key of the event sent after an order is stored.
const OrderCreatedRoutingKey = "order.created"

// CheckoutResult is the stored order and the payment page to redirect to.
type CheckoutResult struct {
	Order      *models.Order
	SessionURL string
}

// CheckoutService turns a submitted cart into an order and a hosted payment session.
type CheckoutService struct {
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	payments    PaymentGateway
	publisher   EventPublisher
	currency    string
	baseURL     string
	validate    *validator.Validate
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil.
func NewCheckoutService(
	productRepo repositories.ProductRepository,
	orderRepo repositories.OrderRepository,
	payments PaymentGateway,
	publisher EventPublisher,
	currency string,
	baseURL string,
) *CheckoutService {
	return &CheckoutService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		payments:    payments,
		publisher:   publisher,
		currency:    strings.ToLower(currency),
		baseURL:     strings.TrimRight(baseURL, "/"),
		validate:    newValidator(),
	}
}

// Checkout prices the cart from the catalog, stores an unpaid order and opens a
// payment session tagged with the order id. origin is where the provider sends
// the customer back; the configured base URL is used when it is empty.
//
// The order is stored before the provider is called and is not removed if the
// session cannot be created.
func (s *CheckoutService) Checkout(ctx context.Context, req models.CheckoutRequest, origin string) (*CheckoutResult, error) {
	c := cart.Parse(req.Products)
	if c.IsEmpty() {
		return nil, newValidationError("cart is empty", missingFields("products"))
	}
	if err := validateStruct(s.validate, "invalid contact details", req); err != nil {
		return nil, err
	}

	items, err := s.lineItems(ctx, c)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:        uuid.New().String(),
		Items:     items,
		Name:      req.Name,
		Email:     req.Email,
		Address:   req.Address,
		City:      req.City,
		Paid:      false,
		CreatedAt: time.Now(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publishOrderCreated(order)

	returnTo := strings.TrimRight(origin, "/")
	if returnTo == "" {
		returnTo = s.baseURL
	}
	session, err := s.payments.CreateCheckoutSession(ctx, PaymentSessionRequest{
		OrderID:       order.ID,
		CustomerEmail: order.Email,
		Items:         order.Items,
		SuccessURL:    returnTo + "/?success=true",
		CancelURL:     returnTo + "/?canceled=true",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: payment session for order %s: %w", ErrUpstream, order.ID, err)
	}
	log.Printf("Created payment session %s for order %s", session.ID, order.ID)

	return &CheckoutResult{Order: order, SessionURL: session.URL}, nil
}

// lineItems builds one line item per distinct product in the cart. Every id
// must resolve; nothing is written otherwise.
func (s *CheckoutService) lineItems(ctx context.Context, c *cart.Cart) ([]models.LineItem, error) {
	ids := c.Distinct()
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	quantities := c.Quantities()
	items := make([]models.LineItem, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		items = append(items, models.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantities[id],
			Currency:  s.currency,
		})
	}
	return items, nil
}

func (s *CheckoutService) publishOrderCreated(order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(models.OrderEvent{
		OrderID:  order.ID,
		Email:    order.Email,
		Total:    order.Total().String(),
		Currency: s.currency,
		Items:    order.Items,
	})
	if err != nil {
		log.Printf("Failed to marshal order event for order %s: %v", order.ID, err)
		return
	}
	if err := s.publisher.Publish(OrderCreatedRoutingKey, body); err != nil {
		log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
	}
}
