// Package session stores the per-user conversation state.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
)

// Kind names a flow. The values are the markers the bot has always used.
type Kind string

const (
	KindIdle             Kind = "idle"
	KindCategoryMenu     Kind = "menu_categorias"
	KindAwaitingQuantity Kind = "solicitar_cantidad"
	KindProductAdded     Kind = "producto_agregado"
	KindCheckout         Kind = "checkout"
	KindCompleted        Kind = "pedido_completo"
	KindCancelled        Kind = "pedido_cancelado"
)

// Flow is the multi-turn process a user is in. The set of implementations is
// closed.
type Flow interface {
	Kind() Kind
	isFlow()
}

type Idle struct{}

type CategoryMenu struct{}

// AwaitingQuantity pins the product whose quantity is being asked for.
type AwaitingQuantity struct {
	Product catalog.Selection
}

type ProductAdded struct{}

type Checkout struct {
	State checkout.State
}

type OrderCompleted struct {
	OrderID string
}

type OrderCancelled struct{}

func (Idle) Kind() Kind             { return KindIdle }
func (CategoryMenu) Kind() Kind     { return KindCategoryMenu }
func (AwaitingQuantity) Kind() Kind { return KindAwaitingQuantity }
func (ProductAdded) Kind() Kind     { return KindProductAdded }
func (Checkout) Kind() Kind         { return KindCheckout }
func (OrderCompleted) Kind() Kind   { return KindCompleted }
func (OrderCancelled) Kind() Kind   { return KindCancelled }

func (Idle) isFlow()             {}
func (CategoryMenu) isFlow()     {}
func (AwaitingQuantity) isFlow() {}
func (ProductAdded) isFlow()     {}
func (Checkout) isFlow()         {}
func (OrderCompleted) isFlow()   {}
func (OrderCancelled) isFlow()   {}

// State is everything remembered about one user between messages. Topic is
// the last classified topic; SelectedCategory survives flow changes.
type State struct {
	Flow             Flow
	Topic            string
	SelectedCategory string
	UpdatedAt        time.Time
}

// CurrentFlow never returns nil.
func (s State) CurrentFlow() Flow {
	if s.Flow == nil {
		return Idle{}
	}
	return s.Flow
}

// Patch is a partial update. Nil fields leave the stored value untouched.
type Patch struct {
	Flow             Flow
	Topic            *string
	SelectedCategory *string
}

// Str returns a pointer to s for use in a Patch.
func Str(s string) *string {
	return &s
}

// Apply merges p into s.
func (p Patch) Apply(s State, now time.Time) State {
	if p.Flow != nil {
		s.Flow = p.Flow
	}
	if p.Topic != nil {
		s.Topic = *p.Topic
	}
	if p.SelectedCategory != nil {
		s.SelectedCategory = *p.SelectedCategory
	}
	s.UpdatedAt = now
	return s
}

type flowEnvelope struct {
	Kind     Kind               `json:"kind"`
	Product  *catalog.Selection `json:"product,omitempty"`
	Checkout *checkout.State    `json:"checkout,omitempty"`
	OrderID  string             `json:"orderId,omitempty"`
}

type stateJSON struct {
	Flow             flowEnvelope `json:"flow"`
	Topic            string       `json:"topic,omitempty"`
	SelectedCategory string       `json:"selectedCategory,omitempty"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func (s State) MarshalJSON() ([]byte, error) {
	env := flowEnvelope{Kind: s.CurrentFlow().Kind()}
	switch f := s.CurrentFlow().(type) {
	case AwaitingQuantity:
		env.Product = &f.Product
	case Checkout:
		env.Checkout = &f.State
	case OrderCompleted:
		env.OrderID = f.OrderID
	}
	return json.Marshal(stateJSON{
		Flow:             env,
		Topic:            s.Topic,
		SelectedCategory: s.SelectedCategory,
		UpdatedAt:        s.UpdatedAt,
	})
}

func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var f Flow
	switch raw.Flow.Kind {
	case KindIdle, "":
		f = Idle{}
	case KindCategoryMenu:
		f = CategoryMenu{}
	case KindAwaitingQuantity:
		if raw.Flow.Product == nil {
			return fmt.Errorf("flow %s without product", raw.Flow.Kind)
		}
		f = AwaitingQuantity{Product: *raw.Flow.Product}
	case KindProductAdded:
		f = ProductAdded{}
	case KindCheckout:
		if raw.Flow.Checkout == nil {
			return fmt.Errorf("flow %s without checkout state", raw.Flow.Kind)
		}
		f = Checkout{State: *raw.Flow.Checkout}
	case KindCompleted:
		f = OrderCompleted{OrderID: raw.Flow.OrderID}
	case KindCancelled:
		f = OrderCancelled{}
	default:
		return fmt.Errorf("unknown flow kind %q", raw.Flow.Kind)
	}

	*s = State{Flow: f, Topic: raw.Topic, SelectedCategory: raw.SelectedCategory, UpdatedAt: raw.UpdatedAt}
	return nil
}
