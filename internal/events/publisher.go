package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
)

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	exchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch       Channel
	seqRepo  SequenceRepository
	producer string
	now      func() time.Time
}

type PublisherOptions struct {
	Producer string
}

func NewPublisher(conn *amqp.Connection, seqRepo SequenceRepository, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return NewChannelPublisher(ch, seqRepo, opts)
}

// NewChannelPublisher declares the events exchange on ch and publishes to it.
func NewChannelPublisher(ch Channel, seqRepo SequenceRepository, opts PublisherOptions) (*Publisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = shopbotServiceName
	}

	return &Publisher{
		ch:       ch,
		seqRepo:  seqRepo,
		producer: producer,
		now:      time.Now,
	}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

var _ checkout.EventPublisher = (*Publisher)(nil)

func (p *Publisher) PublishOrderPlaced(ctx context.Context, order checkout.Order) error {
	payload := OrderPlacedPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Customer: OrderCustomer{
			Name:    order.Customer.Name,
			Address: order.Customer.Address,
			Phone:   order.Customer.Phone,
		},
		Items:    orderLines(order.Items),
		Total:    order.Total,
		PlacedAt: order.PlacedAt.UTC(),
	}

	seq, err := p.seqRepo.NextSequence(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	meta := EnvelopeMetadata{CorrelationID: order.ID}
	env := newOrderPlacedEvent(meta, seq, p.producer, order.UserID, payload, p.now().UTC())
	return publishEnvelope(ctx, p, OrderPlacedRoutingKey, EventNameOrderPlaced, env)
}

func (p *Publisher) PublishOrderCancelled(ctx context.Context, userID string, items []cart.Item) error {
	timestamp := p.now().UTC()
	payload := OrderCancelledPayload{
		UserID:      userID,
		Items:       orderLines(items),
		CancelledAt: timestamp,
	}

	seq, err := p.seqRepo.NextSequence(ctx, userID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := newOrderCancelledEvent(EnvelopeMetadata{}, seq, p.producer, userID, payload, timestamp)
	return publishEnvelope(ctx, p, OrderCancelledRoutingKey, EventNameOrderCancelled, env)
}

// publishEnvelope refuses envelopes that fail validation; nothing reaches the
// exchange for them.
func publishEnvelope[T any](ctx context.Context, p *Publisher, routingKey, eventName string, env EventEnvelope[T]) error {
	if err := env.Validate(eventName, 1); err != nil {
		return fmt.Errorf("%s: %w", eventName, err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventName, err)
	}
	return p.publishJSON(ctx, routingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func orderLines(items []cart.Item) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, OrderLine{
			Name:     it.Name,
			Category: it.Category,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return lines
}

func newOrderPlacedEvent(meta EnvelopeMetadata, seq int64, producer, partitionKey string, payload OrderPlacedPayload, occurredAt time.Time) OrderPlacedEvent {
	return OrderPlacedEvent{
		EventName:     EventNameOrderPlaced,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		Sequence:      &seq,
		OccurredAt:    occurredAt,
		Schema:        orderPlacedSchema,
		Payload:       payload,
	}
}

func newOrderCancelledEvent(meta EnvelopeMetadata, seq int64, producer, partitionKey string, payload OrderCancelledPayload, occurredAt time.Time) OrderCancelledEvent {
	return OrderCancelledEvent{
		EventName:     EventNameOrderCancelled,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		Sequence:      &seq,
		OccurredAt:    occurredAt,
		Schema:        orderCancelledSchema,
		Payload:       payload,
	}
}
