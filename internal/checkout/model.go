package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/cart"
)

type Stage string

const (
	StageNone         Stage = ""
	StageCustomerData Stage = "datos_cliente"
	StageConfirmation Stage = "confirmacion"
	StageCompleted    Stage = "completado"
	StageCancelled    Stage = "cancelado"
)

type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Valid   bool   `json:"valid"`
}

// State is the checkout progress of one user. Customer is set from the
// confirmation stage on; OrderID only once the order is completed.
type State struct {
	Stage    Stage     `json:"stage"`
	Customer *Customer `json:"customer,omitempty"`
	OrderID  string    `json:"orderId,omitempty"`
}

// Order is a confirmed cart snapshot.
type Order struct {
	ID       string
	UserID   string
	Customer Customer
	Items    []cart.Item
	Total    decimal.Decimal
	PlacedAt time.Time
}

// Invoice identifies the document issued for an order. DocumentRef is empty
// when no document could be produced.
type Invoice struct {
	Number      string
	DocumentRef string
	Text        string
}

// Result is the reply of one checkout turn and the state to store.
type Result struct {
	Text        string
	DocumentRef string
	State       State
}
