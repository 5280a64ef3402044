// Package bot turns one inbound chat message into one reply, driving the
// user's cart, checkout and browsing state along the way.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/chat"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/command"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/intent"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/resolver"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/session"
)

const (
	ApologyText = "😔 Lo siento, ocurrió un problema al procesar tu mensaje. Por favor, intenta de nuevo en un momento."

	quantityRepromptText = "Por favor, responde con un número válido de unidades (ejemplo: 2).\n" +
		"Escribe *cancelar* si no deseas añadir el producto."
	quantityCancelledText = "Entendido, no se añadió el producto. Escribe *ver productos* para seguir explorando."
	categoryNotFoundText  = "❌ Categoría no encontrada. Por favor, elige una categoría válida del menú."
)

// Deps are the collaborators of an Orchestrator. Images is optional.
type Deps struct {
	Index     *catalog.Index
	Resolver  *resolver.Resolver
	Sessions  session.Store
	Carts     *cart.Manager
	Router    *command.Router
	Checkout  *checkout.Flow
	Responses *intent.Responses
	Images    *catalog.ImageStore
	Log       logrus.FieldLogger
}

type Orchestrator struct {
	Deps
	locks *userLocks
}

func New(d Deps) *Orchestrator {
	return &Orchestrator{Deps: d, locks: newUserLocks()}
}

// Handle processes one message. Messages of the same user are handled one at
// a time; failures are logged and answered with ApologyText.
func (o *Orchestrator) Handle(ctx context.Context, msg chat.Message) (reply chat.Reply) {
	text := strings.TrimSpace(msg.Body)
	if text == "" {
		return chat.Reply{}
	}

	unlock := o.locks.lock(msg.UserID)
	defer unlock()

	log := o.Log.WithField("user_id", msg.UserID)
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", fmt.Sprint(rec)).Error("message handler panicked")
			reply = chat.Text(ApologyText)
		}
	}()

	log.WithField("body", text).Debug("processing message")
	reply, err := o.handle(ctx, msg.UserID, text)
	if err != nil {
		log.WithError(err).Error("message handling failed")
		return chat.Text(ApologyText)
	}
	return reply
}

func (o *Orchestrator) handle(ctx context.Context, userID, text string) (chat.Reply, error) {
	st, err := o.Sessions.Get(ctx, userID)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("load session: %w", err)
	}
	flow := st.CurrentFlow()

	if pending, ok := flow.(session.AwaitingQuantity); ok {
		return o.handleQuantity(ctx, userID, pending, text)
	}

	res, err := o.Router.Route(ctx, userID, text)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("command: %w", err)
	}
	if res != nil {
		if res.Patch != nil {
			if err := o.update(ctx, userID, *res.Patch); err != nil {
				return chat.Reply{}, err
			}
		}
		return res.Reply, nil
	}

	if intent.IsPurchase(text) {
		out := o.Resolver.ProcessOrder(text)
		if out.Found {
			if err := o.update(ctx, userID, session.Patch{Flow: session.AwaitingQuantity{Product: out.Match.Selection()}}); err != nil {
				return chat.Reply{}, err
			}
		}
		return chat.Text(out.Text), nil
	}

	switch f := flow.(type) {
	case session.Checkout:
		return o.handleCheckout(ctx, userID, f, text)
	case session.CategoryMenu:
		return o.handleMenu(ctx, userID, st, text)
	case session.Idle:
		if i := o.implicitCategory(text); i >= 0 {
			return o.showCategory(ctx, userID, i)
		}
	}

	return o.fallback(ctx, userID, text)
}

func (o *Orchestrator) update(ctx context.Context, userID string, p session.Patch) error {
	if _, err := o.Sessions.Update(ctx, userID, p); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (o *Orchestrator) handleQuantity(ctx context.Context, userID string, pending session.AwaitingQuantity, text string) (chat.Reply, error) {
	if strings.EqualFold(text, "cancelar") {
		if err := o.update(ctx, userID, session.Patch{Flow: session.Idle{}}); err != nil {
			return chat.Reply{}, err
		}
		return chat.Text(quantityCancelledText), nil
	}

	qty, err := strconv.Atoi(strings.Fields(text)[0])
	if err != nil || qty < 1 {
		return chat.Text(quantityRepromptText), nil
	}

	if _, err := o.Carts.Add(ctx, userID, pending.Product, qty); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			return chat.Text(quantityRepromptText), nil
		}
		return chat.Reply{}, err
	}
	if err := o.update(ctx, userID, session.Patch{Flow: session.ProductAdded{}}); err != nil {
		return chat.Reply{}, err
	}
	return chat.Text(command.AddedText(pending.Product, qty)), nil
}

func (o *Orchestrator) handleCheckout(ctx context.Context, userID string, f session.Checkout, text string) (chat.Reply, error) {
	res, err := o.Checkout.Handle(ctx, userID, f.State, text)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("checkout: %w", err)
	}
	if err := o.update(ctx, userID, session.Patch{Flow: flowFor(res.State)}); err != nil {
		return chat.Reply{}, err
	}
	return chat.Reply{Text: res.Text, DocumentRef: res.DocumentRef}, nil
}

func flowFor(st checkout.State) session.Flow {
	switch st.Stage {
	case checkout.StageCustomerData, checkout.StageConfirmation:
		return session.Checkout{State: st}
	case checkout.StageCompleted:
		return session.OrderCompleted{OrderID: st.OrderID}
	case checkout.StageCancelled:
		return session.OrderCancelled{}
	default:
		return session.Idle{}
	}
}

func (o *Orchestrator) handleMenu(ctx context.Context, userID string, st session.State, text string) (chat.Reply, error) {
	// bare numbers are menu choices, never product fragments
	if st.SelectedCategory != "" && !isNumber(text) {
		if p, ok := o.Resolver.ResolveInCategory(st.SelectedCategory, text); ok {
			return o.pinProduct(ctx, userID, p)
		}
	}

	if i := o.Index.CategoryByNameOrNumber(text); i >= 0 {
		return o.showCategory(ctx, userID, i)
	}
	if intent.Classify(text) != intent.Default {
		return o.fallback(ctx, userID, text)
	}
	return chat.Text(categoryNotFoundText), nil
}

func (o *Orchestrator) pinProduct(ctx context.Context, userID string, p catalog.Product) (chat.Reply, error) {
	if p.HasVariants() {
		return chat.Text(resolver.VariantOptionsText(p)), nil
	}
	sel := p.Selection()
	if err := o.update(ctx, userID, session.Patch{Flow: session.AwaitingQuantity{Product: sel}}); err != nil {
		return chat.Reply{}, err
	}
	return chat.Reply{Text: resolver.FoundText(sel), ImageRef: o.image(sel.ImageRef)}, nil
}

// implicitCategory maps a bare menu number or a mentioned category name to a
// category position.
func (o *Orchestrator) implicitCategory(text string) int {
	if isNumber(text) {
		return o.Index.CategoryByNameOrNumber(text)
	}
	return o.Index.CategoryMentionedIn(text)
}

func (o *Orchestrator) showCategory(ctx context.Context, userID string, i int) (chat.Reply, error) {
	c, ok := o.Index.Category(i)
	if !ok {
		return chat.Text(categoryNotFoundText), nil
	}
	if err := o.update(ctx, userID, session.Patch{Flow: session.CategoryMenu{}, SelectedCategory: session.Str(c.Name)}); err != nil {
		return chat.Reply{}, err
	}

	reply := chat.Text(catalog.CategoryProducts(c))
	if len(c.Products) > 0 {
		reply.ImageRef = o.image(c.Products[0].ImageRef)
	}
	return reply, nil
}

// image resolves an image reference, degrading to no image.
func (o *Orchestrator) image(ref string) string {
	if ref == "" || o.Images == nil {
		return ""
	}
	path, err := o.Images.Resolve(ref)
	if err != nil {
		o.Log.WithError(err).WithField("image", ref).Warn("image unavailable")
		return ""
	}
	return path
}

func (o *Orchestrator) fallback(ctx context.Context, userID, text string) (chat.Reply, error) {
	topic := intent.Classify(text)
	p := session.Patch{Topic: session.Str(string(topic))}

	var reply string
	switch topic {
	case intent.Help:
		reply = intent.HelpMessage()
	case intent.Products:
		p.Flow = session.CategoryMenu{}
		reply = o.Responses.Random(topic) + "\n\n" + o.Index.CategoryMenu()
	default:
		reply = o.Responses.Random(topic)
	}

	if err := o.update(ctx, userID, p); err != nil {
		return chat.Reply{}, err
	}
	return chat.Text(reply), nil
}

func isNumber(text string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(text))
	return err == nil
}
