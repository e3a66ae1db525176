package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Noore22/Cake-Craft/internal/platform/format"
	"github.com/Noore22/Cake-Craft/internal/platform/httpx"
	"github.com/Noore22/Cake-Craft/internal/services"
)

// CartHandlers exposes the shopping cart.
type CartHandlers struct {
	cart    services.CartService
	present presenter
}

// NewCartHandlers constructs cart handlers.
func NewCartHandlers(cart services.CartService, money *format.MoneyFormatter) *CartHandlers {
	return &CartHandlers{cart: cart, present: newPresenter(money)}
}

// Routes registers cart endpoints under the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Delete("/items/{cakeId}", h.removeItem)
}

type cartResponse struct {
	Items []cakePayload `json:"items"`
	Quote quotePayload  `json:"quote"`
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, http.StatusOK)
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		writeCartError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cakeID := strings.TrimSpace(chi.URLParam(r, "cakeId"))
	if cakeID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_cake_id", "cake id is required", http.StatusBadRequest))
		return
	}
	if _, err := h.cart.Remove(ctx, cakeID); err != nil {
		writeCartError(ctx, w, err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

func (h *CartHandlers) writeCart(w http.ResponseWriter, r *http.Request, status int) {
	ctx := r.Context()
	items, err := h.cart.Get(ctx)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	quote, err := h.cart.Estimate(ctx, r.URL.Query().Get("coupon"))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, status, cartResponse{
		Items: h.present.cakes(items),
		Quote: h.present.quote(quote),
	})
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_item_not_found", "cake is not in the cart", http.StatusNotFound))
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart is temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to process cart request", http.StatusInternalServerError))
	}
}
