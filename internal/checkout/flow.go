// Package checkout collects customer data and confirms or cancels orders.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/money"
)

// CartService is the part of cart.Manager the flow needs.
type CartService interface {
	Items(ctx context.Context, userID string) ([]cart.Item, error)
	Clear(ctx context.Context, userID string) error
}

// Invoicer issues an order number and document. It may return a usable
// Invoice together with an error when only the document failed.
type Invoicer interface {
	Issue(ctx context.Context, order Order) (Invoice, error)
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order Order) error
	PublishOrderCancelled(ctx context.Context, userID string, items []cart.Item) error
}

type Flow struct {
	carts    CartService
	invoices Invoicer
	events   EventPublisher
	log      logrus.FieldLogger
	now      func() time.Time
}

type Option func(*Flow)

// WithEvents publishes order placed/cancelled events after each outcome.
func WithEvents(p EventPublisher) Option {
	return func(f *Flow) { f.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

func NewFlow(carts CartService, invoices Invoicer, log logrus.FieldLogger, opts ...Option) *Flow {
	f := &Flow{carts: carts, invoices: invoices, log: log, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

const (
	EmptyCartText = "Tu carrito está vacío. Añade productos antes de finalizar la compra."

	CustomerDataPrompt = "Por favor, proporciona los siguientes datos para finalizar tu compra:\n\n" +
		"1️⃣ *Tu nombre completo* (mínimo 3 caracteres)\n" +
		"2️⃣ *Tu dirección de entrega* (o indica si recogerás en el Monasterio)\n" +
		"3️⃣ *Tu número de teléfono* (formato válido)\n\n" +
		"Ejemplo:\n" +
		"María Pérez\n" +
		"Calle Principal 123, Ciudad\n" +
		"0991234567\n\n" +
		"Nota: Es muy importante proporcionar la información completa para procesar tu pedido."

	invalidDataText = "❌ *Los datos no son válidos o están incompletos.*\n\n"

	cancelledText = "❌ Tu pedido ha sido cancelado y tu carrito fue vaciado.\n\n" +
		"Escribe *ver productos* para seguir explorando nuestro catálogo."

	RepromptText = "Por favor, proporciona la información solicitada para continuar con tu pedido."
)

// Begin starts checkout. An empty cart is rejected and leaves the state at
// StageNone.
func (f *Flow) Begin(ctx context.Context, userID string) (Result, error) {
	items, err := f.carts.Items(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("begin checkout: %w", err)
	}
	if len(items) == 0 {
		return Result{Text: EmptyCartText}, nil
	}
	return Result{Text: CustomerDataPrompt, State: State{Stage: StageCustomerData}}, nil
}

// Handle advances the checkout by one message.
func (f *Flow) Handle(ctx context.Context, userID string, st State, text string) (Result, error) {
	switch st.Stage {
	case StageCustomerData:
		return f.collectCustomer(ctx, userID, st, text)
	case StageConfirmation:
		if IsConfirmation(text) {
			return f.confirm(ctx, userID, st)
		}
		return f.cancel(ctx, userID)
	default:
		return Result{Text: RepromptText, State: st}, nil
	}
}

func (f *Flow) collectCustomer(ctx context.Context, userID string, st State, text string) (Result, error) {
	c := ValidateCustomer(text)
	if !c.Valid {
		f.log.WithFields(logrus.Fields{"user_id": userID, "name": c.Name}).Info("invalid customer data")
		return Result{Text: invalidDataText + CustomerDataPrompt, State: st}, nil
	}

	items, err := f.carts.Items(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return Result{Text: EmptyCartText}, nil
	}

	return Result{
		Text:  OrderSummary(c, items),
		State: State{Stage: StageConfirmation, Customer: &c},
	}, nil
}

func (f *Flow) confirm(ctx context.Context, userID string, st State) (Result, error) {
	items, err := f.carts.Items(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return Result{Text: EmptyCartText}, nil
	}

	order := Order{
		UserID:   userID,
		Items:    items,
		Total:    cart.Total(items),
		PlacedAt: f.now().UTC(),
	}
	if st.Customer != nil {
		order.Customer = *st.Customer
	}

	inv, err := f.invoices.Issue(ctx, order)
	if err != nil {
		if inv.Number == "" {
			return Result{}, fmt.Errorf("issue invoice: %w", err)
		}
		f.log.WithError(err).WithField("order_id", inv.Number).Warn("invoice document unavailable")
	}
	order.ID = inv.Number

	if err := f.carts.Clear(ctx, userID); err != nil {
		return Result{}, err
	}

	if f.events != nil {
		if err := f.events.PublishOrderPlaced(ctx, order); err != nil {
			f.log.WithError(err).WithField("order_id", order.ID).Error("publish order placed")
		}
	}
	f.log.WithFields(logrus.Fields{"user_id": userID, "order_id": order.ID, "total": order.Total.StringFixed(2)}).Info("order completed")

	text := "🎉 *¡Pedido confirmado!*\n\n" +
		fmt.Sprintf("Tu número de pedido es: *%s*\n\n", inv.Number)
	if inv.Text != "" {
		text += inv.Text
	}

	return Result{
		Text:        strings.TrimRight(text, "\n"),
		DocumentRef: inv.DocumentRef,
		State:       State{Stage: StageCompleted, Customer: st.Customer, OrderID: inv.Number},
	}, nil
}

func (f *Flow) cancel(ctx context.Context, userID string) (Result, error) {
	items, err := f.carts.Items(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("load cart: %w", err)
	}
	if err := f.carts.Clear(ctx, userID); err != nil {
		return Result{}, err
	}

	if f.events != nil && len(items) > 0 {
		if err := f.events.PublishOrderCancelled(ctx, userID, items); err != nil {
			f.log.WithError(err).WithField("user_id", userID).Error("publish order cancelled")
		}
	}
	f.log.WithField("user_id", userID).Info("order cancelled")

	return Result{Text: cancelledText, State: State{Stage: StageCancelled}}, nil
}

// IsConfirmation accepts "si" and "sí" in any case, ignoring trailing
// punctuation.
func IsConfirmation(text string) bool {
	s := strings.TrimRight(strings.ToLower(strings.TrimSpace(text)), ".!")
	return s == "si" || s == "sí"
}

// OrderSummary lists the customer data and cart lines and asks for
// confirmation.
func OrderSummary(c Customer, items []cart.Item) string {
	var b strings.Builder
	b.WriteString("📋 *Resumen de tu pedido:*\n\n")
	fmt.Fprintf(&b, "👤 *Nombre:* %s\n", c.Name)
	fmt.Fprintf(&b, "📍 *Dirección:* %s\n", c.Address)
	fmt.Fprintf(&b, "📞 *Teléfono:* %s\n\n", c.Phone)
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s x%d = %s\n", i+1, it.Name, it.Quantity, money.Format(it.Subtotal()))
	}
	fmt.Fprintf(&b, "\n💰 *Total: %s*\n\n", money.Format(cart.Total(items)))
	b.WriteString("¿Confirmas tu pedido? Responde *SI* para confirmar o *NO* para cancelar.")
	return b.String()
}
