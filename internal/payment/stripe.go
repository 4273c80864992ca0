// Package payment opens hosted checkout sessions with Stripe.
package payment

import (
	"context"
	"fmt"

	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Config holds Stripe connection details. APIURL overrides the API host and
// is meant for stripe-mock or tests.
type Config struct {
	SecretKey string
	APIURL    string
}

// StripeGateway implements services.PaymentGateway with Stripe Checkout.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a new StripeGateway.
func NewStripeGateway(cfg Config) *StripeGateway {
	var backends *stripe.Backends
	if cfg.APIURL != "" {
		backendConfig := &stripe.BackendConfig{
			URL:               stripe.String(cfg.APIURL),
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
		}
		backends = &stripe.Backends{
			API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
			Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
			Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
		}
	}
	return &StripeGateway{api: client.New(cfg.SecretKey, backends)}
}

// CreateCheckoutSession opens a payment-mode session for the order's line items.
// The order id is attached as the orderId metadata entry.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req services.PaymentSessionRequest) (*services.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItemParams(req.Items),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("orderId", req.OrderID)
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe checkout session: %w", err)
	}
	return &services.PaymentSession{ID: session.ID, URL: session.URL}, nil
}

func lineItemParams(items []models.LineItem) []*stripe.CheckoutSessionLineItemParams {
	out := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		out = append(out, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(item.Currency),
				UnitAmount: stripe.Int64(MinorUnits(item.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}
	return out
}

// MinorUnits converts a price in currency units to cents, rounding half away from zero.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}
