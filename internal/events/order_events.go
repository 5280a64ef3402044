package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventNameOrderPlaced    = "OrderPlaced"
	EventNameOrderCancelled = "OrderCancelled"

	orderPlacedSchema    = "shopbot/order.placed/v1"
	orderCancelledSchema = "shopbot/order.cancelled/v1"
)

type OrderLine struct {
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderCustomer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type OrderPlacedPayload struct {
	OrderID  string          `json:"orderId"`
	UserID   string          `json:"userId"`
	Customer OrderCustomer   `json:"customer"`
	Items    []OrderLine     `json:"items"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placedAt"`
}

type OrderCancelledPayload struct {
	UserID      string      `json:"userId"`
	Items       []OrderLine `json:"items"`
	CancelledAt time.Time   `json:"cancelledAt"`
}

type OrderPlacedEvent = EventEnvelope[OrderPlacedPayload]

type OrderCancelledEvent = EventEnvelope[OrderCancelledPayload]
