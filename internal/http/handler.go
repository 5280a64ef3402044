package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/chat"
)

// MessageHandler is satisfied by *bot.Orchestrator.
type MessageHandler interface {
	Handle(ctx context.Context, msg chat.Message) chat.Reply
}

type CartReader interface {
	Items(ctx context.Context, userID string) ([]cart.Item, error)
}

type ProductSearcher interface {
	Search(term string) []catalog.Product
}

type Handler struct {
	bot      MessageHandler
	carts    CartReader
	products ProductSearcher
}

func NewHandler(bot MessageHandler, carts CartReader, products ProductSearcher) *Handler {
	return &Handler{bot: bot, carts: carts, products: products}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// PostMessage feeds one inbound chat message to the bot. 204 means the bot
// has nothing to send back.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var msg chat.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if strings.TrimSpace(msg.UserID) == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	reply := h.bot.Handle(r.Context(), msg)
	if reply.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type cartResponse struct {
	UserID string          `json:"userId"`
	Items  []cart.Item     `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	items, err := h.carts.Items(r.Context(), userID)
	if err != nil {
		requestLogger(r).WithError(err).WithField("user", userID).Error("load cart failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []cart.Item{}
	}
	writeJSON(w, http.StatusOK, cartResponse{UserID: userID, Items: items, Total: cart.Total(items)})
}

type variantResponse struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type productResponse struct {
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Price    *decimal.Decimal  `json:"price,omitempty"`
	ImageRef string            `json:"imageRef,omitempty"`
	Variants []variantResponse `json:"variants,omitempty"`
}

func (h *Handler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	found := h.products.Search(q)
	out := make([]productResponse, 0, len(found))
	for _, p := range found {
		pr := productResponse{Name: p.Name, Category: p.Category, ImageRef: p.ImageRef}
		if p.HasVariants() {
			for _, v := range p.Variants {
				pr.Variants = append(pr.Variants, variantResponse{Name: v.Name, Price: v.Price})
			}
		} else {
			price := p.Price
			pr.Price = &price
		}
		out = append(out, pr)
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type ctxKeyLog struct{}

func requestLogger(r *http.Request) logrus.FieldLogger {
	if log, ok := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}
