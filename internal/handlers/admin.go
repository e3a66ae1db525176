package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/platform/format"
	"github.com/Noore22/Cake-Craft/internal/platform/httpx"
	"github.com/Noore22/Cake-Craft/internal/platform/pagination"
	"github.com/Noore22/Cake-Craft/internal/services"
)

// AdminHandlers serves the order management panel.
type AdminHandlers struct {
	orders  services.OrderService
	present presenter
	clock   func() time.Time
}

// AdminOption customises admin handlers.
type AdminOption func(*AdminHandlers)

// WithAdminClock injects the clock used for today's order count.
func WithAdminClock(clock func() time.Time) AdminOption {
	return func(h *AdminHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewAdminHandlers constructs admin handlers.
func NewAdminHandlers(orders services.OrderService, money *format.MoneyFormatter, opts ...AdminOption) *AdminHandlers {
	h := &AdminHandlers{orders: orders, present: newPresenter(money), clock: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers admin endpoints under the provided router.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/orders", h.listOrders)
	r.Put("/orders/{orderId}/status", h.updateStatus)
	r.Get("/stats", h.getStats)
}

type adminOrdersResponse struct {
	Items         []orderPayload `json:"items"`
	Statuses      []statusOption `json:"statuses"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

var adminPageOptions = pagination.Options{DefaultPageSize: 50, MaxPageSize: 200}

type statusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type adminStatsResponse struct {
	TotalOrders  int          `json:"totalOrders"`
	TotalRevenue format.Money `json:"totalRevenue"`
	ActiveOrders int          `json:"activeOrders"`
	TodayOrders  int          `json:"todayOrders"`
}

func (h *AdminHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := pagination.FromRequest(r, adminPageOptions)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_pagination", err.Error(), http.StatusBadRequest))
		return
	}
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if status == "all" {
		status = ""
	}
	orders, err := h.orders.ListOrders(ctx, services.OrderListFilter{
		Status:        services.OrderStatus(status),
		CustomerEmail: strings.TrimSpace(r.URL.Query().Get("email")),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	page, next := pagination.Page(orders, params, func(o services.Order) string { return o.ID })

	statuses := domain.OrderStatuses()
	options := make([]statusOption, 0, len(statuses))
	for _, s := range statuses {
		options = append(options, statusOption{Value: string(s), Label: s.Label()})
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, adminOrdersResponse{
		Items:         h.present.orders(page),
		Statuses:      options,
		NextPageToken: pagination.EncodeToken(next),
	})
}

func (h *AdminHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateStatusRequest
	if status, err := decodeBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}
	order, err := h.orders.UpdateStatus(ctx, services.UpdateOrderStatusCommand{
		OrderID: chi.URLParam(r, "orderId"),
		Status:  req.Status,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.present.order(order))
}

func (h *AdminHandlers) getStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.orders.AdminStats(ctx, h.clock())
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, adminStatsResponse{
		TotalOrders:  stats.TotalOrders,
		TotalRevenue: h.present.amount(stats.TotalRevenue),
		ActiveOrders: stats.ActiveOrders,
		TodayOrders:  stats.TodayOrders,
	})
}
