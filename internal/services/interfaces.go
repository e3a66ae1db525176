package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Configuration      = domain.Configuration
	CustomCake         = domain.CustomCake
	CustomerInfo       = domain.CustomerInfo
	Order              = domain.Order
	OrderStatus        = domain.OrderStatus
	CheckoutQuote      = domain.CheckoutQuote
	PriceLine          = domain.PriceLine
	Session            = domain.Session
	User               = domain.User
	SystemHealthReport = domain.SystemHealthReport
)

// PromotionService resolves coupon codes to discount rates.
type PromotionService interface {
	Resolve(code string) (Coupon, bool)
	Coupons() []Coupon
}

// CartService owns the shopping cart and mirrors every change.
type CartService interface {
	Get(ctx context.Context) ([]CustomCake, error)
	Add(ctx context.Context, cake CustomCake) ([]CustomCake, error)
	Remove(ctx context.Context, cakeID string) ([]CustomCake, error)
	Clear(ctx context.Context) error
	Estimate(ctx context.Context, couponCode string) (CheckoutQuote, error)
}

// CustomizerService keeps in-progress cake configurations keyed by session id.
type CustomizerService interface {
	Start(ctx context.Context) (CustomizerSession, error)
	Get(ctx context.Context, sessionID string) (CustomizerSession, error)
	Select(ctx context.Context, cmd CustomizerSelectCommand) (CustomizerSession, error)
	Advance(ctx context.Context, sessionID string) (CustomizerSession, bool, error)
	Back(ctx context.Context, sessionID string) (CustomizerSession, error)
	AddToCart(ctx context.Context, sessionID string) (CustomCake, error)
	Discard(ctx context.Context, sessionID string) error
	Prune(now time.Time) int
}

// CheckoutService turns the cart into orders.
type CheckoutService interface {
	Quote(ctx context.Context, couponCode string) (CheckoutQuote, error)
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (CheckoutResult, error)
}

// OrderService covers the order history and the admin panel.
type OrderService interface {
	ListOrders(ctx context.Context, filter OrderListFilter) ([]Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error)
	Reorder(ctx context.Context, orderID string) ([]CustomCake, error)
	AdminStats(ctx context.Context, now time.Time) (AdminStats, error)
	DashboardStats(ctx context.Context, session Session) (DashboardStats, error)
}

// SessionService identifies the visitor. It performs no authentication.
type SessionService interface {
	Current(ctx context.Context) Session
}

// SystemService reports service health.
type SystemService interface {
	BuildInfo() BuildInfo
	Uptime() time.Duration
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// OrderEventPublisher publishes order domain events for downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// OrderEvent captures metadata for emitted order domain events.
type OrderEvent struct {
	Type           string          `json:"type"`
	OrderID        string          `json:"orderId"`
	CheckoutID     string          `json:"checkoutId,omitempty"`
	PreviousStatus string          `json:"previousStatus,omitempty"`
	CurrentStatus  string          `json:"currentStatus"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	CustomerEmail  string          `json:"customerEmail,omitempty"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// Coupon is a promotion code and the share of the subtotal it discounts.
type Coupon struct {
	Code string
	Rate decimal.Decimal
}

// CustomizerSelection names the field a select command changes.
type CustomizerSelection string

const (
	SelectBase     CustomizerSelection = "base"
	SelectShape    CustomizerSelection = "shape"
	SelectSize     CustomizerSelection = "size"
	SelectFilling  CustomizerSelection = "filling"
	SelectFrosting CustomizerSelection = "frosting"
	SelectAddon    CustomizerSelection = "addon"
	SelectMessage  CustomizerSelection = "message"
)

// CustomizerSelectCommand applies one selection to a session. Value is a catalog
// id, or the message text for SelectMessage.
type CustomizerSelectCommand struct {
	SessionID string
	Field     CustomizerSelection
	Value     string
}

// CustomizerSession is a snapshot of an in-progress configuration.
type CustomizerSession struct {
	ID            string
	Configuration Configuration
	Step          Step
	Price         decimal.Decimal
	Breakdown     []PriceLine
	CanAdvance    bool
	Complete      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PlaceOrderCommand carries the checkout form. The cart is read from the store.
type PlaceOrderCommand struct {
	Customer     CustomerInfo
	DeliveryDate string
	DeliveryTime string
	CouponCode   string
}

// CheckoutResult lists the orders created by one checkout and the quote they follow.
type CheckoutResult struct {
	CheckoutID string
	Orders     []Order
	Quote      CheckoutQuote
}

// OrderListFilter narrows ListOrders. Empty fields match everything.
type OrderListFilter struct {
	Status        OrderStatus
	CustomerEmail string
}

// UpdateOrderStatusCommand sets an order's status.
type UpdateOrderStatusCommand struct {
	OrderID string
	Status  string
}

// AdminStats summarises the order book for the admin panel.
type AdminStats struct {
	TotalOrders  int
	TotalRevenue decimal.Decimal
	ActiveOrders int
	TodayOrders  int
}

// DashboardStats summarises a signed-in customer's history.
type DashboardStats struct {
	TotalOrders int
	Delivered   int
	InProgress  int
	Favorites   int
}
