package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/platform/format"
	"github.com/Noore22/Cake-Craft/internal/platform/httpx"
	"github.com/Noore22/Cake-Craft/internal/services"
)

// OrderHandlers exposes the visitor's order history.
type OrderHandlers struct {
	orders  services.OrderService
	present presenter
}

// NewOrderHandlers constructs order handlers.
func NewOrderHandlers(orders services.OrderService, money *format.MoneyFormatter) *OrderHandlers {
	return &OrderHandlers{orders: orders, present: newPresenter(money)}
}

// Routes registers order endpoints under the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listOrders)
	r.Get("/{orderId}", h.getOrder)
	r.Post("/{orderId}:reorder", h.reorder)
}

type orderDetailResponse struct {
	orderPayload
	Tracker []statusOption `json:"tracker"`
}

type orderListResponse struct {
	Items []orderPayload `json:"items"`
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orders, err := h.orders.ListOrders(ctx, services.OrderListFilter{
		Status: services.OrderStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, orderListResponse{Items: h.present.orders(orders)})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	steps := domain.ProgressSteps()
	tracker := make([]statusOption, 0, len(steps))
	for _, s := range steps {
		tracker = append(tracker, statusOption{Value: string(s), Label: s.Label()})
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, orderDetailResponse{orderPayload: h.present.order(order), Tracker: tracker})
}

// reorder replaces the cart with the order's cake and returns the new cart.
func (h *OrderHandlers) reorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.orders.Reorder(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": h.present.cakes(cart)})
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrSessionRequired):
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "sign in to view this page", http.StatusUnauthorized))
	case errors.Is(err, services.ErrOrderUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("orders_unavailable", "orders are temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order request", http.StatusInternalServerError))
	}
}
