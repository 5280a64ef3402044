// Package cart keeps per-user shopping carts.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/money"
)

// MaxQuantity bounds the quantity of a single cart line.
const MaxQuantity = 9999

var ErrInvalidQuantity = errors.New("quantity must be between 1 and 9999")

// Manager applies cart operations on top of a Repository. Callers serialize
// operations for the same user.
type Manager struct {
	repo Repository
	log  logrus.FieldLogger
}

func NewManager(repo Repository, log logrus.FieldLogger) *Manager {
	return &Manager{repo: repo, log: log}
}

// Add merges sel into the user's cart, summing quantities when a line with
// the same name and category exists.
func (m *Manager) Add(ctx context.Context, userID string, sel catalog.Selection, qty int) ([]Item, error) {
	if qty < 1 || qty > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	c, err := m.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].Name == sel.Name && c.Items[i].Category == sel.Category {
			if c.Items[i].Quantity > MaxQuantity-qty {
				return nil, ErrInvalidQuantity
			}
			c.Items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, Item{Name: sel.Name, Price: sel.Price, Category: sel.Category, Quantity: qty})
	}
	c.recalculate()

	if err := m.repo.UpsertCart(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	m.log.WithFields(logrus.Fields{"user_id": userID, "product": sel.Name, "quantity": qty}).Info("product added to cart")
	return c.Items, nil
}

// Remove deletes the line at the zero-based index. It reports false, and
// leaves the cart untouched, when the index is out of range.
func (m *Manager) Remove(ctx context.Context, userID string, index int) (bool, error) {
	c, err := m.load(ctx, userID)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(c.Items) {
		return false, nil
	}

	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	c.recalculate()
	if err := m.repo.UpsertCart(ctx, c); err != nil {
		return false, fmt.Errorf("save cart: %w", err)
	}
	return true, nil
}

func (m *Manager) Items(ctx context.Context, userID string) ([]Item, error) {
	c, err := m.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.Items, nil
}

func (m *Manager) Total(ctx context.Context, userID string) (decimal.Decimal, error) {
	items, err := m.Items(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return Total(items), nil
}

func (m *Manager) Summary(ctx context.Context, userID string) (string, error) {
	items, err := m.Items(ctx, userID)
	if err != nil {
		return "", err
	}
	return Summary(items), nil
}

func (m *Manager) Clear(ctx context.Context, userID string) error {
	if err := m.repo.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	m.log.WithField("user_id", userID).Info("cart cleared")
	return nil
}

func (m *Manager) load(ctx context.Context, userID string) (*Cart, error) {
	c, err := m.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil {
		c = &Cart{UserID: userID}
	}
	return c, nil
}

const emptyCartText = "Tu carrito está vacío. Escribe *ver productos* para ver el catálogo."

// Summary renders the numbered cart lines with subtotals, the grand total and
// the cart commands.
func Summary(items []Item) string {
	if len(items) == 0 {
		return emptyCartText
	}

	var b strings.Builder
	b.WriteString("🛒 *Resumen de tu carrito:*\n\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, it.Name, it.Category)
		fmt.Fprintf(&b, "   Precio: %s x %d = %s\n\n", money.Format(it.Price), it.Quantity, money.Format(it.Subtotal()))
	}
	fmt.Fprintf(&b, "💰 *Total: %s*\n\n", money.Format(Total(items)))
	b.WriteString("Comandos disponibles:\n" +
		"➕ *añadir [producto]* - Añadir producto (se preguntará la cantidad)\n" +
		"➕ *añadir [cantidad] [producto]* - Añadir cantidad específica\n" +
		"➖ *quitar [número]* - Quitar un producto\n" +
		"✅ *finalizar compra* - Proceder al pago\n" +
		"❌ *vaciar carrito* - Cancelar la compra")
	return b.String()
}
