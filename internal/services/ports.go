package services

import (
	"context"

	"tienda/internal/models"
)

// PaymentSessionRequest describes the hosted checkout session to open for an order.
type PaymentSessionRequest struct {
	OrderID       string
	CustomerEmail string
	Items         []models.LineItem
	SuccessURL    string
	CancelURL     string
}

// PaymentSession is the provider-hosted page the customer is sent to.
type PaymentSession struct {
	ID  string
	URL string
}

// PaymentGateway opens hosted payment sessions with the payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req PaymentSessionRequest) (*PaymentSession, error)
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}
