package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the durable queue auth events are routed to.
const DefaultQueue = "auth.events"

// Publisher delivers auth events. Implementations must be safe for
// concurrent use; failures are reported but must not affect auth outcomes.
type Publisher interface {
	Publish(ctx context.Context, ev AuthEvent) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AuthEvent) error { return nil }

// AMQPPublisher publishes events to RabbitMQ. A connection is dialed per
// publish so a broker outage never leaves a dead connection behind.
type AMQPPublisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
	Log         *slog.Logger
}

func NewAMQPPublisher(url, queueName string, log *slog.Logger) *AMQPPublisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	if log == nil {
		log = slog.Default()
	}
	return &AMQPPublisher{URL: url, Queue: queueName, DialTimeout: 2 * time.Second, Log: log}
}

// Publish sends ev to the queue as a persistent JSON message. Errors are
// logged and returned so the caller can choose to ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev AuthEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
	if err != nil {
		p.Log.WarnContext(ctx, "rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.WarnContext(ctx, "rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		p.Log.WarnContext(ctx, "rabbitmq: queue declare failed", "queue", p.Queue, "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		p.Log.WarnContext(ctx, "rabbitmq: publish failed", "queue", p.Queue, "error", err)
		return err
	}
	return nil
}
