package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/repositories"
)

const (
	orderIDPrefix    = "ORD-"
	checkoutIDPrefix = "CHK-"

	checkoutMetricNamespace = "github.com/Noore22/Cake-Craft/checkout"
)

var (
	// ErrCheckoutEmptyCart indicates checkout was attempted with nothing in the cart.
	ErrCheckoutEmptyCart = errors.New("checkout: cart is empty")
	// ErrCheckoutInvalidInput indicates missing customer or delivery details.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutUnavailable indicates the cart or order mirror failed.
	ErrCheckoutUnavailable = errors.New("checkout: repository unavailable")
)

// CheckoutServiceDeps bundles collaborators required to construct the checkout service.
type CheckoutServiceDeps struct {
	Cart        repositories.CartRepository
	Orders      repositories.OrderRepository
	Pricing     *PricingEngine
	UnitOfWork  repositories.UnitOfWork
	Events      OrderEventPublisher
	Meter       metric.Meter
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type checkoutService struct {
	cart       repositories.CartRepository
	orders     repositories.OrderRepository
	pricing    *PricingEngine
	unitOfWork repositories.UnitOfWork
	events     OrderEventPublisher
	clock      func() time.Time
	newID      func() string
	logger     func(context.Context, string, map[string]any)

	placed         metric.Int64Counter
	placedEnabled  bool
	revenue        metric.Float64Histogram
	revenueEnabled bool
}

// NewCheckoutService wires the cart and order mirrors behind one unit of work.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Cart == nil {
		return nil, errors.New("checkout service: cart repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("checkout service: pricing engine is required")
	}

	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(checkoutMetricNamespace)
	}
	placed, placedErr := meter.Int64Counter(
		"orders.placed",
		metric.WithDescription("Count of orders created at checkout"),
	)
	if placedErr != nil {
		logger(context.Background(), "checkout.metric.register.failed", map[string]any{"metric": "orders.placed", "error": placedErr.Error()})
	}
	revenue, revenueErr := meter.Float64Histogram(
		"orders.revenue",
		metric.WithUnit("{currency}"),
		metric.WithDescription("Checkout totals charged to customers"),
	)
	if revenueErr != nil {
		logger(context.Background(), "checkout.metric.register.failed", map[string]any{"metric": "orders.revenue", "error": revenueErr.Error()})
	}

	return &checkoutService{
		cart:       deps.Cart,
		orders:     deps.Orders,
		pricing:    deps.Pricing,
		unitOfWork: unit,
		events:     deps.Events,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:          idGen,
		logger:         logger,
		placed:         placed,
		placedEnabled:  placedErr == nil,
		revenue:        revenue,
		revenueEnabled: revenueErr == nil,
	}, nil
}

func (s *checkoutService) Quote(ctx context.Context, couponCode string) (CheckoutQuote, error) {
	cart, err := s.cart.Load(ctx)
	if err != nil {
		return CheckoutQuote{}, mapCheckoutRepositoryError(err)
	}
	return s.pricing.Quote(cart, couponCode), nil
}

// PlaceOrder creates one pending order per cart item, appends them to the
// history and clears the cart as a single unit of work.
func (s *checkoutService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (CheckoutResult, error) {
	customer, err := normalizeCustomer(cmd.Customer)
	if err != nil {
		return CheckoutResult{}, err
	}
	deliveryDate := strings.TrimSpace(cmd.DeliveryDate)
	deliveryTime := strings.TrimSpace(cmd.DeliveryTime)
	if deliveryDate == "" || deliveryTime == "" {
		return CheckoutResult{}, fmt.Errorf("%w: delivery date and time are required", ErrCheckoutInvalidInput)
	}

	var result CheckoutResult
	err = s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		cart, err := s.cart.Load(txCtx)
		if err != nil {
			return mapCheckoutRepositoryError(err)
		}
		if len(cart) == 0 {
			return ErrCheckoutEmptyCart
		}
		history, err := s.orders.Load(txCtx)
		if err != nil {
			return mapCheckoutRepositoryError(err)
		}

		quote := s.pricing.Quote(cart, cmd.CouponCode)
		now := s.clock()
		checkoutID := checkoutIDPrefix + s.newID()
		taken := make(map[string]struct{}, len(history)+len(cart))
		for _, order := range history {
			taken[order.ID] = struct{}{}
		}

		totals := attributeTotals(cart, quote)
		orders := make([]Order, 0, len(cart))
		for i, cake := range cart {
			order := Order{
				ID:           s.uniqueOrderID(taken),
				CheckoutID:   checkoutID,
				Cake:         cake,
				Customer:     customer,
				DeliveryDate: deliveryDate,
				DeliveryTime: deliveryTime,
				Status:       domain.OrderStatusPending,
				TotalAmount:  totals[i],
				DeliveryFee:  decimal.Zero,
				Discount:     decimal.Zero,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if i == 0 {
				order.DeliveryFee = quote.DeliveryFee
				order.Discount = quote.Discount
				if quote.CouponApplied {
					order.CouponCode = quote.CouponCode
				}
			}
			orders = append(orders, order)
		}

		if err := s.orders.Save(txCtx, append(history, orders...)); err != nil {
			return mapCheckoutRepositoryError(err)
		}
		if err := s.cart.Save(txCtx, []CustomCake{}); err != nil {
			return mapCheckoutRepositoryError(err)
		}

		result = CheckoutResult{CheckoutID: checkoutID, Orders: orders, Quote: quote}
		return nil
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	for _, order := range result.Orders {
		s.publishEvent(ctx, OrderEvent{
			Type:          orderEventCreated,
			OrderID:       order.ID,
			CheckoutID:    order.CheckoutID,
			CurrentStatus: string(order.Status),
			TotalAmount:   order.TotalAmount,
			CustomerEmail: order.Customer.Email,
			OccurredAt:    order.CreatedAt,
		})
	}
	s.recordMetrics(ctx, result)
	s.logger(ctx, "checkout.completed", map[string]any{
		"checkoutID": result.CheckoutID,
		"orders":     len(result.Orders),
		"total":      result.Quote.Total.StringFixed(2),
		"coupon":     result.Quote.CouponCode,
		"rejected":   result.Quote.CouponRejected,
	})
	return result, nil
}

// attributeTotals prices each order. The first order carries the delivery fee
// minus the discount; any discount beyond its own price spills onto the
// following orders so no order total is negative and the totals sum to the quote.
func attributeTotals(cart []CustomCake, quote CheckoutQuote) []decimal.Decimal {
	totals := make([]decimal.Decimal, len(cart))
	carry := quote.DeliveryFee.Sub(quote.Discount)
	for i, cake := range cart {
		amount := cake.TotalPrice
		if i == 0 || carry.IsNegative() {
			amount = amount.Add(carry)
			carry = decimal.Zero
		}
		if amount.IsNegative() {
			carry = amount
			amount = decimal.Zero
		}
		totals[i] = amount
	}
	return totals
}

func (s *checkoutService) uniqueOrderID(taken map[string]struct{}) string {
	for {
		id := orderIDPrefix + s.newID()
		if _, exists := taken[id]; !exists {
			taken[id] = struct{}{}
			return id
		}
	}
}

func (s *checkoutService) recordMetrics(ctx context.Context, result CheckoutResult) {
	attrs := metric.WithAttributes(
		attribute.String("currency", result.Quote.Currency),
		attribute.Bool("coupon_applied", result.Quote.CouponApplied),
	)
	if s.placedEnabled {
		s.placed.Add(ctx, int64(len(result.Orders)), attrs)
	}
	if s.revenueEnabled {
		s.revenue.Record(ctx, result.Quote.Total.InexactFloat64(), attrs)
	}
}

func (s *checkoutService) publishEvent(ctx context.Context, event OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"type":   event.Type,
			"order":  event.OrderID,
			"error":  err.Error(),
			"status": event.CurrentStatus,
		})
	}
}

func normalizeCustomer(info CustomerInfo) (CustomerInfo, error) {
	out := CustomerInfo{
		Name:    strings.TrimSpace(info.Name),
		Phone:   strings.TrimSpace(info.Phone),
		Email:   strings.TrimSpace(info.Email),
		Address: strings.TrimSpace(info.Address),
	}
	var missing []string
	if out.Name == "" {
		missing = append(missing, "name")
	}
	if out.Phone == "" {
		missing = append(missing, "phone")
	}
	if out.Email == "" {
		missing = append(missing, "email")
	}
	if out.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return CustomerInfo{}, fmt.Errorf("%w: missing %s", ErrCheckoutInvalidInput, strings.Join(missing, ", "))
	}
	return out, nil
}

func mapCheckoutRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && (repoErr.IsUnavailable() || repoErr.IsConflict() || repoErr.IsNotFound()) {
		return fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}
	return err
}
