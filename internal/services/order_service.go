package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/repositories"
)

const (
	orderEventCreated       = "order.created"
	orderEventStatusChanged = "order.status.changed"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderUnavailable indicates the order mirror could not be read or written.
	ErrOrderUnavailable = errors.New("order: repository unavailable")
	// ErrSessionRequired indicates the operation needs a signed-in visitor.
	ErrSessionRequired = errors.New("order: signed-in session required")
)

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Cart        repositories.CartRepository
	UnitOfWork  repositories.UnitOfWork
	Events      OrderEventPublisher
	Location    *time.Location
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders     repositories.OrderRepository
	cart       repositories.CartRepository
	unitOfWork repositories.UnitOfWork
	events     OrderEventPublisher
	location   *time.Location
	clock      func() time.Time
	newID      func() string
	logger     func(context.Context, string, map[string]any)
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Cart == nil {
		return nil, errors.New("order service: cart repository is required")
	}

	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return uuid.NewString() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		orders:     deps.Orders,
		cart:       deps.Cart,
		unitOfWork: unit,
		events:     deps.Events,
		location:   location,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

// ListOrders returns matching orders, newest first.
func (s *orderService) ListOrders(ctx context.Context, filter OrderListFilter) ([]Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, filter.Status)
	}
	history, err := s.orders.Load(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	email := strings.TrimSpace(filter.CustomerEmail)

	out := make([]Order, 0, len(history))
	for _, order := range history {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if email != "" && !strings.EqualFold(order.Customer.Email, email) {
			continue
		}
		out = append(out, order)
	}
	// history is append-only, so reversing insertion order breaks CreatedAt ties.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	history, err := s.orders.Load(ctx)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}
	idx := indexOfOrder(history, orderID)
	if idx < 0 {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return history[idx], nil
}

// UpdateStatus writes any known status regardless of the current one.
func (s *orderService) UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	next, ok := domain.ParseOrderStatus(cmd.Status)
	if !ok {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, cmd.Status)
	}

	var (
		updated  Order
		previous OrderStatus
	)
	err := s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		history, err := s.orders.Load(txCtx)
		if err != nil {
			return s.mapRepositoryError(err)
		}
		idx := indexOfOrder(history, orderID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		previous = history[idx].Status
		history[idx].Status = next
		history[idx].UpdatedAt = s.clock()
		if err := s.orders.Save(txCtx, history); err != nil {
			return s.mapRepositoryError(err)
		}
		updated = history[idx]
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.publishEvent(ctx, OrderEvent{
		Type:           orderEventStatusChanged,
		OrderID:        updated.ID,
		CheckoutID:     updated.CheckoutID,
		PreviousStatus: string(previous),
		CurrentStatus:  string(updated.Status),
		TotalAmount:    updated.TotalAmount,
		CustomerEmail:  updated.Customer.Email,
		OccurredAt:     updated.UpdatedAt,
	})
	return updated, nil
}

// Reorder replaces the cart with exactly the order's cake under a fresh id.
func (s *orderService) Reorder(ctx context.Context, orderID string) ([]CustomCake, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	var cart []CustomCake
	err := s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		history, err := s.orders.Load(txCtx)
		if err != nil {
			return s.mapRepositoryError(err)
		}
		idx := indexOfOrder(history, orderID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		cake := history[idx].Cake
		cake.ID = s.newID()
		cart = []CustomCake{cake}
		return s.mapRepositoryError(s.cart.Save(txCtx, cart))
	})
	if err != nil {
		return nil, err
	}
	s.logger(ctx, "order.reordered", map[string]any{"order": orderID, "cakeID": cart[0].ID})
	return cart, nil
}

func (s *orderService) AdminStats(ctx context.Context, now time.Time) (AdminStats, error) {
	history, err := s.orders.Load(ctx)
	if err != nil {
		return AdminStats{}, s.mapRepositoryError(err)
	}
	local := now.In(s.location)
	year, month, day := local.Date()

	stats := AdminStats{TotalOrders: len(history), TotalRevenue: decimal.Zero}
	for _, order := range history {
		stats.TotalRevenue = stats.TotalRevenue.Add(order.TotalAmount)
		if order.Status.IsActive() {
			stats.ActiveOrders++
		}
		y, m, d := order.CreatedAt.In(s.location).Date()
		if y == year && m == month && d == day {
			stats.TodayOrders++
		}
	}
	return stats, nil
}

// DashboardStats counts orders placed under the signed-in user's email.
func (s *orderService) DashboardStats(ctx context.Context, session Session) (DashboardStats, error) {
	user, ok := domain.SessionUser(session)
	if !ok {
		return DashboardStats{}, ErrSessionRequired
	}
	orders, err := s.ListOrders(ctx, OrderListFilter{CustomerEmail: user.Email})
	if err != nil {
		return DashboardStats{}, err
	}
	stats := DashboardStats{TotalOrders: len(orders), Favorites: len(user.Favorites)}
	for _, order := range orders {
		switch {
		case order.Status == domain.OrderStatusDelivered:
			stats.Delivered++
		case order.Status.IsActive():
			stats.InProgress++
		}
	}
	return stats, nil
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict(), repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
		}
	}

	return err
}

func (s *orderService) publishEvent(ctx context.Context, event OrderEvent) {
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

func indexOfOrder(history []Order, orderID string) int {
	for i, order := range history {
		if order.ID == orderID {
			return i
		}
	}
	return -1
}
