//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/testutil"
)

func TestPublisher_OrderPlacedReachesBoundQueue(t *testing.T) {
	conn := testutil.StartRabbitMQ(t)

	publisher, err := events.NewPublisher(conn, events.NewMemorySequence(), events.PublisherOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	consumeCh, err := conn.Channel()
	require.NoError(t, err)
	t.Cleanup(func() { _ = consumeCh.Close() })

	queue := events.QueueName(events.OrderPlacedRoutingKey)
	_, err = consumeCh.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	require.NoError(t, err)
	require.NoError(t, consumeCh.QueueBind(queue, events.OrderPlacedRoutingKey, events.EventsExchange, false, nil))

	deliveries, err := consumeCh.Consume(queue, "", true, false, false, false, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	order := checkout.Order{
		ID:       "MON-250314-0042",
		UserID:   "593991234567",
		Customer: checkout.Customer{Name: "María Pérez", Address: "Recoge en Monasterio", Phone: "0991234567", Valid: true},
		Items: []cart.Item{
			{Name: "Cake de Chocolate", Category: "Cake", Quantity: 1, Price: decimal.NewFromInt(12)},
		},
		Total:    decimal.NewFromInt(12),
		PlacedAt: time.Now().UTC(),
	}
	require.NoError(t, publisher.PublishOrderPlaced(ctx, order))

	select {
	case d := <-deliveries:
		var env events.OrderPlacedEvent
		require.NoError(t, json.Unmarshal(d.Body, &env))
		require.NoError(t, env.Validate(events.EventNameOrderPlaced, 1))
		require.Equal(t, order.ID, env.Payload.OrderID)
		require.Equal(t, order.UserID, env.PartitionKey)
		require.Equal(t, int64(1), *env.Sequence)
	case <-ctx.Done():
		t.Fatal("timed out waiting for OrderPlaced")
	}
}
