// Package command recognizes explicit chat commands ("carrito", "añadir 2
// ...", "quitar 1", ...) ahead of any intent guessing.
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/chat"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/intent"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/resolver"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/session"
)

// Result is a handled command. Patch, when set, must be applied to the
// user's session.
type Result struct {
	Reply chat.Reply
	Patch *session.Patch
}

type Router struct {
	index    *catalog.Index
	resolver *resolver.Resolver
	carts    *cart.Manager
	checkout *checkout.Flow
	log      logrus.FieldLogger
}

func NewRouter(index *catalog.Index, res *resolver.Resolver, carts *cart.Manager, flow *checkout.Flow, log logrus.FieldLogger) *Router {
	return &Router{index: index, resolver: res, carts: carts, checkout: flow, log: log}
}

const (
	clearedText = "🗑️ Tu carrito ha sido vaciado. Puedes seguir explorando nuestros productos."

	addUsageText = "Para añadir un producto, escribe: *añadir [producto]* o *añadir [cantidad] [producto]*\n" +
		"Ejemplos:\n" +
		"• añadir Frasco de 500 ml\n" +
		"• añadir 2 Frasco de 500 ml"

	removeUsageText = "Para quitar un producto, escribe: *quitar [número]*\n" +
		"El número es la posición del producto en el carrito.\n" +
		"Ejemplo: quitar 1"

	shortNameText = "Escribe un poco más del nombre del producto. Ejemplo: *añadir Frasco de 500 ml*"

	invalidIndexText = "Por favor, indica un número válido. Ejemplo: *quitar 1*"
	missingLineText  = "❌ No encontré ese producto en tu carrito. Verifica el número."
)

var invalidQuantityText = fmt.Sprintf("Por favor, indica una cantidad entre 1 y %d. Ejemplo: *añadir 2 Frasco de 500 ml*", cart.MaxQuantity)

var (
	addVerbs    = map[string]bool{"añadir": true, "anadir": true, "agregar": true}
	removeVerbs = map[string]bool{"quitar": true, "eliminar": true, "borrar": true}
	helpWords   = map[string]bool{"ayuda": true, "help": true, "como comprar": true, "cómo comprar": true}
)

// Route returns nil when text is not a command.
func (r *Router) Route(ctx context.Context, userID, text string) (*Result, error) {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case lower == "carrito" || lower == "ver carrito":
		summary, err := r.carts.Summary(ctx, userID)
		if err != nil {
			return nil, err
		}
		return reply(summary), nil

	case lower == "finalizar compra":
		res, err := r.checkout.Begin(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := reply(res.Text)
		if res.State.Stage == checkout.StageCustomerData {
			out.Patch = &session.Patch{Flow: session.Checkout{State: res.State}}
		}
		return out, nil

	case lower == "vaciar carrito" || lower == "cancelar compra":
		if err := r.carts.Clear(ctx, userID); err != nil {
			return nil, err
		}
		out := reply(clearedText)
		out.Patch = &session.Patch{Flow: session.Idle{}}
		return out, nil

	case helpWords[lower]:
		return reply(intent.HelpMessage()), nil

	case strings.Contains(lower, "ver productos"):
		return reply(r.index.ProductList()), nil

	case strings.Contains(lower, "ver imágenes") || strings.Contains(lower, "ver imagenes"):
		out := reply(r.index.CategoryMenu())
		out.Patch = &session.Patch{Flow: session.CategoryMenu{}, SelectedCategory: session.Str("")}
		return out, nil
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, nil
	}
	verb := strings.ToLower(fields[0])
	switch {
	case addVerbs[verb]:
		return r.add(ctx, userID, fields[1:])
	case removeVerbs[verb]:
		return r.remove(ctx, userID, fields[1:])
	}
	return nil, nil
}

func (r *Router) add(ctx context.Context, userID string, args []string) (*Result, error) {
	if len(args) == 0 {
		return reply(addUsageText), nil
	}

	if qty, err := strconv.Atoi(args[0]); err == nil && qty > 0 {
		name := strings.Join(args[1:], " ")
		if name == "" {
			return reply(addUsageText), nil
		}
		sel, res := r.resolve(name)
		if res != nil {
			return res, nil
		}
		if _, err := r.carts.Add(ctx, userID, sel, qty); err != nil {
			if errors.Is(err, cart.ErrInvalidQuantity) {
				return reply(invalidQuantityText), nil
			}
			return nil, err
		}
		return reply(AddedText(sel, qty)), nil
	}

	name := strings.Join(args, " ")
	sel, res := r.resolve(name)
	if res != nil {
		return res, nil
	}
	out := reply(resolver.FoundText(sel))
	out.Patch = &session.Patch{Flow: session.AwaitingQuantity{Product: sel}}
	return out, nil
}

// resolve returns a reply instead of a selection when name does not name an
// orderable product.
func (r *Router) resolve(name string) (catalog.Selection, *Result) {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < resolver.MinPhraseLength {
		return catalog.Selection{}, reply(shortNameText)
	}
	m, ok := r.resolver.Resolve(name)
	if !ok {
		r.log.WithField("phrase", name).Info("product not found")
		return catalog.Selection{}, reply(fmt.Sprintf("No encontré el producto \"%s\". Verifica el nombre exacto en el catálogo.", name))
	}
	if !m.Orderable() {
		return catalog.Selection{}, reply(resolver.VariantOptionsText(m.Product))
	}
	return m.Selection(), nil
}

func (r *Router) remove(ctx context.Context, userID string, args []string) (*Result, error) {
	if len(args) == 0 {
		return reply(removeUsageText), nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return reply(invalidIndexText), nil
	}

	ok, err := r.carts.Remove(ctx, userID, n-1)
	if err != nil {
		return nil, err
	}
	if !ok {
		return reply(missingLineText), nil
	}
	summary, err := r.carts.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return reply("✅ Producto eliminado del carrito.\n\n" + summary), nil
}

// AddedText confirms a quantity added to the cart.
func AddedText(sel catalog.Selection, qty int) string {
	return fmt.Sprintf("✅ Añadido al carrito: %s x%d\n\n", sel.Name, qty) +
		fmt.Sprintf("Precio por unidad: %s\n", money.Format(sel.Price)) +
		fmt.Sprintf("Total: %s\n\n", money.Format(money.Line(sel.Price, qty))) +
		"Escribe *carrito* para ver tu carrito de compras."
}

func reply(text string) *Result {
	return &Result{Reply: chat.Text(text)}
}
