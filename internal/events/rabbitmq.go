package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Types lists every event type; each is published to a durable queue of the
// same name on the default exchange.
var Types = []Type{TypeBookingConfirmed, TypeBookingCancelled, TypeSeatsReleased}

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel amqpChannel
}

// NewRabbitPublisher dials the broker and declares the event queues.
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open rabbitmq channel: %w", err), conn.Close())
	}

	p, err := newRabbitPublisher(ch)
	if err != nil {
		return nil, errors.Join(err, conn.Close())
	}
	p.conn = conn

	return p, nil
}

func newRabbitPublisher(ch amqpChannel) (*RabbitPublisher, error) {
	for _, t := range Types {
		_, err := ch.QueueDeclare(string(t), true, false, false, false, nil)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("declare queue %s: %w", t, err), ch.Close())
		}
	}

	return &RabbitPublisher{channel: ch}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt.UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, "", string(event.Type), false, false, msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.channel.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}

	return err
}

// LogPublisher stands in for the broker when none is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, event BookingEvent) error {
	p.Logger.DebugContext(ctx, "booking event",
		"event_type", event.Type,
		"event_id", event.ID,
		"booking_id", event.BookingID,
		"showtime_id", event.ShowtimeID,
	)

	return nil
}

func (p LogPublisher) Close() error {
	return nil
}
