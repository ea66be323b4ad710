package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang-wa-dispatch/internal/observability/metrics"
	"golang-wa-dispatch/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one send request.
type Handler func(ctx context.Context, req ports.SendRequest) error

// Consumer implements ports.RequestConsumer using RabbitMQ.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *slog.Logger
}

// NewConsumer dials RabbitMQ, declares topology, and returns a Consumer.
func NewConsumer(amqpURL, queue string, log *slog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// one request at a time; a dispatch call blocks for its whole retry policy
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	if err := declare(ch, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, channel: ch, queue: queue, log: log}, nil
}

// Consume registers a consumer on the queue and calls handler for each delivery.
// It blocks until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context, handler func(ctx context.Context, req ports.SendRequest) error) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // auto-generated consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}
			handleDelivery(ctx, d, handler, c.log)
		}
	}
}

// handleDelivery acks once the handler has run. Requests are never requeued: the
// dispatch call already applied the gateway retry policy.
func handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler, log *slog.Logger) {
	var req ports.SendRequest
	if err := json.Unmarshal(d.Body, &req); err != nil {
		log.Error("unmarshal send request", "message_id", d.MessageId, "err", err)
		metrics.QueueMessagesTotal.WithLabelValues("malformed").Inc()
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, req); err != nil {
		log.Error("handler error", "message_id", d.MessageId, "tenant_id", req.TenantID, "err", err)
		metrics.QueueMessagesTotal.WithLabelValues("failed").Inc()
		_ = d.Nack(false, false)
		return
	}

	metrics.QueueMessagesTotal.WithLabelValues("handled").Inc()
	_ = d.Ack(false)
}

// Close cleanly shuts down the channel and connection.
func (c *Consumer) Close() {
	c.channel.Close()
	c.conn.Close()
}
