package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog/catalogtest"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/chat"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/command"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/intent"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/invoice"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/resolver"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/session"
)

type harness struct {
	bot      *Orchestrator
	sessions session.Store
	carts    *cart.Manager
	hook     *test.Hook
	images   string
}

func newHarness(t *testing.T, store session.Store) *harness {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	images := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(images, "cake.jpg"), []byte("jpg"), 0o600))

	if store == nil {
		store = session.NewMemoryStore()
	}
	idx := catalogtest.Index()
	res := resolver.New(idx)
	carts := cart.NewManager(cart.NewMemoryRepository(), log)
	flow := checkout.NewFlow(carts, invoice.NewGenerator(t.TempDir(), log), log)

	b := New(Deps{
		Index:     idx,
		Resolver:  res,
		Sessions:  store,
		Carts:     carts,
		Router:    command.NewRouter(idx, res, carts, flow, log),
		Checkout:  flow,
		Responses: intent.NewResponses(intent.DefaultTable(), intent.WithPicker(func(int) int { return 0 })),
		Images:    catalog.NewImageStore(images),
		Log:       log,
	})
	return &harness{bot: b, sessions: store, carts: carts, hook: hook, images: images}
}

func (h *harness) send(t *testing.T, body string) chat.Reply {
	t.Helper()
	return h.bot.Handle(context.Background(), chat.Message{UserID: "u1", Body: body})
}

func (h *harness) flow(t *testing.T) session.Flow {
	t.Helper()
	st, err := h.sessions.Get(context.Background(), "u1")
	require.NoError(t, err)
	return st.CurrentFlow()
}

func (h *harness) items(t *testing.T) []cart.Item {
	t.Helper()
	items, err := h.carts.Items(context.Background(), "u1")
	require.NoError(t, err)
	return items
}

func TestHandle_EmptyBodyIsIgnored(t *testing.T) {
	h := newHarness(t, nil)

	require.True(t, h.send(t, "   ").Empty())
	require.Equal(t, session.KindIdle, h.flow(t).Kind())
}

func TestHandle_PurchaseThenQuantity(t *testing.T) {
	h := newHarness(t, nil)

	reply := h.send(t, "Quiero comprar Frasco de 500 ml")
	require.Contains(t, reply.Text, "✅ *Producto encontrado:*")
	pending, ok := h.flow(t).(session.AwaitingQuantity)
	require.True(t, ok)
	require.Equal(t, "Frasco de 500 ml", pending.Product.Name)

	reply = h.send(t, "ver carrito")
	require.Equal(t, quantityRepromptText, reply.Text, "a pending quantity takes priority over commands")

	reply = h.send(t, "0")
	require.Equal(t, quantityRepromptText, reply.Text)
	require.Empty(t, h.items(t))

	reply = h.send(t, "3 unidades")
	require.Contains(t, reply.Text, "Frasco de 500 ml x3")
	require.Equal(t, session.ProductAdded{}, h.flow(t))
	require.Equal(t, 3, h.items(t)[0].Quantity)
}

func TestHandle_QuantityRepromptsOnUnusableAnswers(t *testing.T) {
	h := newHarness(t, nil)
	h.send(t, "añadir Cake de Chocolate")

	for _, answer := range []string{"9223372036854775807", "10000", "2.5", "1abc", "-1"} {
		require.Equal(t, quantityRepromptText, h.send(t, answer).Text, answer)
		require.Equal(t, session.KindAwaitingQuantity, h.flow(t).Kind(), answer)
	}
	require.Empty(t, h.items(t))

	require.Contains(t, h.send(t, "2").Text, "Cake de Chocolate x2")
}

func TestHandle_QuantityCanBeCancelled(t *testing.T) {
	h := newHarness(t, nil)

	h.send(t, "añadir Cake de Chocolate")
	require.Equal(t, session.KindAwaitingQuantity, h.flow(t).Kind())

	require.Equal(t, quantityCancelledText, h.send(t, "Cancelar").Text)
	require.Equal(t, session.KindIdle, h.flow(t).Kind())
	require.Empty(t, h.items(t))
}

func TestHandle_PurchaseMiss(t *testing.T) {
	h := newHarness(t, nil)

	reply := h.send(t, "quiero comprar miel")
	require.Contains(t, reply.Text, "No has especificado qué producto de *Miel de Abeja*")
	require.Equal(t, session.KindIdle, h.flow(t).Kind())
}

func TestHandle_CheckoutConfirmed(t *testing.T) {
	h := newHarness(t, nil)

	h.send(t, "añadir 2 Frasco de 500 ml")
	require.Equal(t, checkout.CustomerDataPrompt, h.send(t, "finalizar compra").Text)

	reply := h.send(t, "Jo\n123")
	require.Contains(t, reply.Text, "no son válidos")
	f, ok := h.flow(t).(session.Checkout)
	require.True(t, ok)
	require.Equal(t, checkout.StageCustomerData, f.State.Stage)
	require.Len(t, h.items(t), 1)

	reply = h.send(t, "María Pérez\nCalle 1\n0991234567")
	require.Contains(t, reply.Text, "¿Confirmas tu pedido?")
	f = h.flow(t).(session.Checkout)
	require.Equal(t, checkout.StageConfirmation, f.State.Stage)

	reply = h.send(t, "si")
	completed, ok := h.flow(t).(session.OrderCompleted)
	require.True(t, ok)
	require.Regexp(t, `^MON-\d{6}-\d{4}$`, completed.OrderID)
	require.Contains(t, reply.Text, completed.OrderID)
	require.FileExists(t, reply.DocumentRef)
	require.Empty(t, h.items(t))
}

func TestHandle_CheckoutDeclined(t *testing.T) {
	h := newHarness(t, nil)

	h.send(t, "añadir 1 Cake de Chocolate")
	h.send(t, "finalizar compra")
	h.send(t, "Juan Ruiz\n0991234567")

	reply := h.send(t, "no")
	require.Contains(t, reply.Text, "cancelado")
	require.NotContains(t, reply.Text, "MON-")
	require.Empty(t, reply.DocumentRef)
	require.Equal(t, session.OrderCancelled{}, h.flow(t))
	require.Empty(t, h.items(t))
}

func TestHandle_CancelCommandLeavesCheckout(t *testing.T) {
	h := newHarness(t, nil)

	h.send(t, "añadir 1 Cake de Chocolate")
	h.send(t, "finalizar compra")
	require.Contains(t, h.send(t, "cancelar compra").Text, "vaciado")
	require.Equal(t, session.KindIdle, h.flow(t).Kind())
}

func TestHandle_CategoryMenu(t *testing.T) {
	h := newHarness(t, nil)

	reply := h.send(t, "ver imágenes")
	require.Contains(t, reply.Text, "2. Cake")
	require.Equal(t, session.CategoryMenu{}, h.flow(t))

	reply = h.send(t, "2")
	require.Contains(t, reply.Text, "🛒 *Productos de Cake:*")
	require.Equal(t, filepath.Join(h.images, "cake.jpg"), reply.ImageRef)
	st, err := h.sessions.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Cake", st.SelectedCategory)

	reply = h.send(t, "naranja")
	require.Contains(t, reply.Text, "Cake de Naranja")
	require.Equal(t, session.KindAwaitingQuantity, h.flow(t).Kind())

	h.send(t, "1")
	require.Equal(t, "Cake de Naranja", h.items(t)[0].Name)
}

func TestHandle_CategoryMenuMisses(t *testing.T) {
	h := newHarness(t, nil)
	h.send(t, "ver imágenes")

	require.Equal(t, categoryNotFoundText, h.send(t, "zzz").Text)
	require.Equal(t, categoryNotFoundText, h.send(t, "9").Text)
	require.Equal(t, session.CategoryMenu{}, h.flow(t))

	reply := h.send(t, "hola")
	require.Equal(t, intent.DefaultTable()[intent.Greeting][0], reply.Text)
}

func TestHandle_CategoryWithMissingImageDegrades(t *testing.T) {
	h := newHarness(t, nil)

	reply := h.send(t, "1")
	require.Contains(t, reply.Text, "Productos de Miel de Abeja")
	require.Empty(t, reply.ImageRef)
}

func TestHandle_ImplicitCategoryOnlyWhenIdle(t *testing.T) {
	h := newHarness(t, nil)

	reply := h.send(t, "tienen cake?")
	require.Contains(t, reply.Text, "Productos de Cake")

	h.send(t, "añadir 1 Cake de Chocolate")
	h.send(t, "finalizar compra")
	reply = h.send(t, "2")
	require.Contains(t, reply.Text, "no son válidos")
}

func TestHandle_Fallback(t *testing.T) {
	h := newHarness(t, nil)

	reply := h.send(t, "buenas tardes")
	require.Equal(t, intent.DefaultTable()[intent.Greeting][0], reply.Text)
	st, err := h.sessions.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, string(intent.Greeting), st.Topic)

	reply = h.send(t, "¿qué venden?")
	require.Contains(t, reply.Text, "1. Miel de Abeja")
	require.Equal(t, session.CategoryMenu{}, h.flow(t))

	h2 := newHarness(t, nil)
	require.Equal(t, intent.HelpMessage(), h2.send(t, "necesito ayuda por favor").Text)
	require.Equal(t, intent.DefaultTable()[intent.Default][0], h2.send(t, "el cielo es azul").Text)
}

type brokenStore struct {
	session.Store
	panics bool
}

func (b brokenStore) Get(context.Context, string) (session.State, error) {
	if b.panics {
		panic("boom")
	}
	return session.State{}, errors.New("store down")
}

func TestHandle_FailuresBecomeApology(t *testing.T) {
	for _, panics := range []bool{false, true} {
		t.Run(fmt.Sprintf("panics=%v", panics), func(t *testing.T) {
			h := newHarness(t, brokenStore{panics: panics})

			reply := h.send(t, "hola")
			require.Equal(t, ApologyText, reply.Text)
			require.Equal(t, logrus.ErrorLevel, h.hook.LastEntry().Level)
			require.Zero(t, h.bot.locks.size())
		})
	}
}

func TestHandle_SerializesSameUser(t *testing.T) {
	h := newHarness(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.send(t, "añadir 1 Cake de Chocolate")
		}()
		go func(i int) {
			defer wg.Done()
			h.bot.Handle(context.Background(), chat.Message{UserID: fmt.Sprintf("other-%d", i), Body: "añadir 2 Cake de Naranja"})
		}(i)
	}
	wg.Wait()

	items := h.items(t)
	require.Len(t, items, 1)
	require.Equal(t, 40, items[0].Quantity)
	require.Zero(t, h.bot.locks.size())
}
