// Package service hosts the booking engine and the helpers that publish
// its domain events to RabbitMQ.  Publish errors are logged and returned
// so callers can ignore failures without interrupting the request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/hotel-reservation/internal/queue"
)

// AMQPPublisher publishes booking events to the broker, dialing per
// publish.  It satisfies the EventPublisher interface the BookingService
// consumes; a nil publisher disables events entirely.
type AMQPPublisher struct{}

// BookingConfirmed publishes a BookingConfirmedEvent to the
// booking.confirmed queue.  The message is marked persistent.
func (AMQPPublisher) BookingConfirmed(ctx context.Context, ev q.BookingConfirmedEvent) error {
	return publish(ctx, q.ConfirmedQueueName, ev)
}

// BookingCancelled publishes a BookingCancelledEvent to the
// booking.cancelled queue.
func (AMQPPublisher) BookingCancelled(ctx context.Context, ev q.BookingCancelledEvent) error {
	return publish(ctx, q.CancelledQueueName, ev)
}

// publish marshals the event and sends it to the named durable queue via
// the default exchange. The function attempts to be robust and to never
// panic; any error is logged and returned so the caller can choose to
// ignore it.
func publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
