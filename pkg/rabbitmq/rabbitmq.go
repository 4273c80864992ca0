package rabbitmq

import (
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	mu       sync.Mutex // guards channel publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string // topic exchange order events are published to
	Queue    string // durable queue bound to BindingKey
	// BindingKey selects which routing keys reach Queue, e.g. "order.*".
	BindingKey string
}

// NewClient connects to RabbitMQ, declares the exchange and queue and binds them.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected, exchange %s bound to %s.", cfg.Exchange, cfg.Queue)

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(cfg.Queue, cfg.BindingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", cfg.Queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to the exchange under routingKey.
func (c *Client) Publish(routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		NewPublishing(body, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Sent %s event: %s", routingKey, body)
	return nil
}

// NewPublishing wraps body in a persistent JSON message.
func NewPublishing(body []byte, ts time.Time) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts,
	}
}

// Acknowledger is the part of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// ConsumeOrderEvents starts a goroutine that hands every message of the queue
// to messageHandler. A nil error acks the message; otherwise it is requeued.
func (c *Client) ConsumeOrderEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for order events on %s", c.queue)

	go func() {
		for msg := range msgs {
			Settle(msg.DeliveryTag, &msg, messageHandler(msg))
		}
	}()

	return nil
}

// Settle acks a processed message, or nacks it with requeue when handlerErr is set.
func Settle(tag uint64, ack Acknowledger, handlerErr error) {
	if handlerErr != nil {
		log.Printf("Error processing message %d: %v", tag, handlerErr)
		if err := ack.Nack(false, true); err != nil {
			log.Printf("Error nacking message %d: %v", tag, err)
		}
		return
	}
	if err := ack.Ack(false); err != nil {
		log.Printf("Error acking message %d: %v", tag, err)
	}
}
