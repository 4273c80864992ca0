package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"

	"tienda/internal/app"
	"tienda/internal/config"
	"tienda/internal/database"
	"tienda/internal/models"
	"tienda/internal/payment"
	"tienda/internal/services"
	"tienda/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	stores, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.DBDriver, err)
	}
	defer stores.Close(ctx)

	// --- Order events (optional) ---
	var publisher services.EventPublisher
	mqStatus := "disabled"
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:        cfg.RabbitMQURL,
			Exchange:   cfg.RabbitMQExchange,
			Queue:      cfg.RabbitMQQueue,
			BindingKey: "order.*",
		})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
		mqStatus = "connected"

		if err := mqClient.ConsumeOrderEvents(handleOrderEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	gateway := payment.NewStripeGateway(payment.Config{
		SecretKey: cfg.StripeSecretKey,
		APIURL:    cfg.StripeAPIURL,
	})

	svc := app.Services{
		Products: services.NewProductService(stores.Products),
		Orders:   services.NewOrderService(stores.Orders),
		Profiles: services.NewProfileService(stores.Profiles),
		Checkout: services.NewCheckoutService(stores.Products, stores.Orders, gateway, publisher, cfg.Currency, cfg.BaseURL),
		Identity: services.NewIdentityService(cfg.IdentityJWTSecret, cfg.IdentityIssuer, cfg.AdminEmails),
	}
	server := app.New(svc, app.Options{
		RequestLog: true,
		Health: func() fiber.Map {
			return fiber.Map{"storage": cfg.DBDriver, "rabbitMQ": mqStatus}
		},
	})

	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// handleOrderEvent logs every order.created event. Malformed messages are
// dropped rather than requeued forever.
func handleOrderEvent(msg amqp.Delivery) error {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Discarding malformed order event (Tag: %d): %v", msg.DeliveryTag, err)
		return nil
	}
	log.Printf("Received %s (Tag: %d): order %s for %s, %s %s, %d line items",
		msg.RoutingKey, msg.DeliveryTag, event.OrderID, event.Email, event.Total, event.Currency, len(event.Items))
	return nil
}
