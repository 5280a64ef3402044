package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange           = "ecommerce.events"
	OrderPlacedRoutingKey    = "order.placed.v1"
	OrderCancelledRoutingKey = "order.cancelled.v1"
	shopbotServiceName       = "shopbot-service-go"
)

func serviceQueue(serviceName, routingKey string) string {
	return serviceName + "." + routingKey
}

// QueueName is the durable queue a consumer of this service's events binds.
func QueueName(routingKey string) string {
	return serviceQueue(shopbotServiceName, routingKey)
}

type exchangeDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

func declareEventsExchange(ch exchangeDeclarer) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
