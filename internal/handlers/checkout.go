package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Noore22/Cake-Craft/internal/catalog"
	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/platform/format"
	"github.com/Noore22/Cake-Craft/internal/platform/httpx"
	"github.com/Noore22/Cake-Craft/internal/platform/requestctx"
	"github.com/Noore22/Cake-Craft/internal/services"
)

const deliveryDateLayout = "2006-01-02"

// CheckoutHandlers validates the checkout form and places orders.
type CheckoutHandlers struct {
	checkout services.CheckoutService
	catalog  *catalog.Catalog
	present  presenter
	clock    func() time.Time
	location *time.Location
}

// CheckoutOption customises checkout handlers.
type CheckoutOption func(*CheckoutHandlers)

// WithCheckoutClock injects the clock used for the earliest delivery date.
func WithCheckoutClock(clock func() time.Time) CheckoutOption {
	return func(h *CheckoutHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithCheckoutLocation sets the calendar used to resolve "tomorrow".
func WithCheckoutLocation(loc *time.Location) CheckoutOption {
	return func(h *CheckoutHandlers) {
		if loc != nil {
			h.location = loc
		}
	}
}

// NewCheckoutHandlers constructs checkout handlers.
func NewCheckoutHandlers(checkout services.CheckoutService, cat *catalog.Catalog, money *format.MoneyFormatter, opts ...CheckoutOption) *CheckoutHandlers {
	h := &CheckoutHandlers{
		checkout: checkout,
		catalog:  cat,
		present:  newPresenter(money),
		clock:    time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers checkout endpoints under the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.placeOrder)
	r.Post("/coupon", h.applyCoupon)
}

type checkoutRequest struct {
	Customer     customerPayload `json:"customerInfo"`
	DeliveryDate string          `json:"deliveryDate"`
	DeliveryTime string          `json:"deliveryTime"`
	CouponCode   string          `json:"couponCode"`
}

type checkoutResponse struct {
	CheckoutID string         `json:"checkoutId"`
	Orders     []orderPayload `json:"orders"`
	Quote      quotePayload   `json:"quote"`
}

type couponRequest struct {
	Code string `json:"code"`
}

func (h *CheckoutHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req checkoutRequest
	if status, err := decodeBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	customer := prefillCustomer(ctx, req.Customer)
	if invalid := h.validateForm(customer, req.DeliveryDate, req.DeliveryTime); len(invalid) > 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_checkout", "checkout form has invalid fields", http.StatusBadRequest).
			WithDetails(map[string]any{"fields": invalid}))
		return
	}

	result, err := h.checkout.PlaceOrder(ctx, services.PlaceOrderCommand{
		Customer:     customer,
		DeliveryDate: strings.TrimSpace(req.DeliveryDate),
		DeliveryTime: strings.TrimSpace(req.DeliveryTime),
		CouponCode:   req.CouponCode,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, checkoutResponse{
		CheckoutID: result.CheckoutID,
		Orders:     h.present.orders(result.Orders),
		Quote:      h.present.quote(result.Quote),
	})
}

func (h *CheckoutHandlers) applyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req couponRequest
	if status, err := decodeBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_coupon", "coupon code is required", http.StatusUnprocessableEntity))
		return
	}
	quote, err := h.checkout.Quote(ctx, req.Code)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	if quote.CouponRejected {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_coupon", "coupon code is not valid", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"quote": h.present.quote(quote)}))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"quote": h.present.quote(quote)})
}

// validateForm returns the names of invalid fields in form order.
func (h *CheckoutHandlers) validateForm(customer services.CustomerInfo, date, slot string) []string {
	var invalid []string
	if customer.Name == "" {
		invalid = append(invalid, "name")
	}
	if customer.Phone == "" {
		invalid = append(invalid, "phone")
	}
	if _, err := mail.ParseAddress(customer.Email); customer.Email == "" || err != nil {
		invalid = append(invalid, "email")
	}
	if customer.Address == "" {
		invalid = append(invalid, "address")
	}
	if !h.validDeliveryDate(strings.TrimSpace(date)) {
		invalid = append(invalid, "deliveryDate")
	}
	if h.catalog == nil || !h.catalog.IsDeliverySlot(strings.TrimSpace(slot)) {
		invalid = append(invalid, "deliveryTime")
	}
	return invalid
}

// validDeliveryDate accepts dates from tomorrow onwards in the store calendar.
func (h *CheckoutHandlers) validDeliveryDate(raw string) bool {
	if raw == "" {
		return false
	}
	date, err := time.ParseInLocation(deliveryDateLayout, raw, h.location)
	if err != nil {
		return false
	}
	now := h.clock().In(h.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.location)
	return !date.Before(today.AddDate(0, 0, 1))
}

// prefillCustomer fills blank contact fields from the signed-in user.
func prefillCustomer(ctx context.Context, in customerPayload) services.CustomerInfo {
	out := domain.CustomerInfo{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	}
	user, ok := domain.SessionUser(requestctx.Session(ctx))
	if !ok {
		return out
	}
	profile := user.CustomerInfo()
	if out.Name == "" {
		out.Name = profile.Name
	}
	if out.Phone == "" {
		out.Phone = profile.Phone
	}
	if out.Email == "" {
		out.Email = profile.Email
	}
	if out.Address == "" {
		out.Address = profile.Address
	}
	return out
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cart is empty", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_checkout", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutUnavailable), errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout is temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to place order", http.StatusInternalServerError))
	}
}
