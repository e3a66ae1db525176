package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

func placeSingle(t *testing.T, sf *storefront, email string) Order {
	t.Helper()
	ctx := context.Background()
	_, err := sf.cart.Add(ctx, cakeAt(t, "", "0"))
	require.NoError(t, err)
	cmd := testPlaceOrder("")
	cmd.Customer.Email = email
	result, err := sf.checkout.PlaceOrder(ctx, cmd)
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	return result.Orders[0]
}

func TestUpdateStatusAnyToAny(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	order := placeSingle(t, sf, "a@example.com")

	sequence := []string{"delivered", "pending", "Out_For_Delivery", "cancelled", "baking"}
	for _, raw := range sequence {
		sf.now = sf.now.Add(time.Minute)
		updated, err := sf.orders.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: order.ID, Status: raw})
		require.NoError(t, err, raw)
		parsed, _ := domain.ParseOrderStatus(raw)
		assert.Equal(t, parsed, updated.Status)
		assert.Equal(t, sf.now, updated.UpdatedAt)
	}

	got, err := sf.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusBaking, got.Status)

	last := sf.events.events[len(sf.events.events)-1]
	assert.Equal(t, "order.status.changed", last.Type)
	assert.Equal(t, "cancelled", last.PreviousStatus)
	assert.Equal(t, "baking", last.CurrentStatus)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	order := placeSingle(t, sf, "a@example.com")

	_, err := sf.orders.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: order.ID, Status: "shipped"})
	require.ErrorIs(t, err, ErrOrderInvalidInput)

	_, err = sf.orders.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: "ORD-missing", Status: "ready"})
	require.ErrorIs(t, err, ErrOrderNotFound)

	got, err := sf.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
}

func TestListOrdersNewestFirstAndFiltered(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	first := placeSingle(t, sf, "a@example.com")
	sf.now = sf.now.Add(time.Hour)
	second := placeSingle(t, sf, "b@example.com")
	third := placeSingle(t, sf, "A@Example.com")

	all, err := sf.orders.ListOrders(ctx, OrderListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine, err := sf.orders.ListOrders(ctx, OrderListFilter{CustomerEmail: "a@example.com"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = sf.orders.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: second.ID, Status: "ready"})
	require.NoError(t, err)
	ready, err := sf.orders.ListOrders(ctx, OrderListFilter{Status: domain.OrderStatusReady})
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, second.ID, ready[0].ID)

	_, err = sf.orders.ListOrders(ctx, OrderListFilter{Status: "lost"})
	require.ErrorIs(t, err, ErrOrderInvalidInput)
}

func TestReorderReplacesCart(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	order := placeSingle(t, sf, "a@example.com")

	_, err := sf.cart.Add(ctx, cakeAt(t, "", "0"))
	require.NoError(t, err)
	_, err = sf.cart.Add(ctx, cakeAt(t, "", "0"))
	require.NoError(t, err)

	cart, err := sf.orders.Reorder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.NotEqual(t, order.Cake.ID, cart[0].ID)
	assert.Equal(t, order.Cake.Base, cart[0].Base)

	stored, err := sf.cart.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, cart, stored)

	_, err = sf.orders.Reorder(ctx, "ORD-missing")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestReorderUnknownOrderKeepsCart(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	placeSingle(t, sf, "a@example.com")

	before, err := sf.cart.Add(ctx, cakeAt(t, "", "0"))
	require.NoError(t, err)

	_, err = sf.orders.Reorder(ctx, "ORD-missing")
	require.ErrorIs(t, err, ErrOrderNotFound)

	after, err := sf.cart.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	sf.now = time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC)
	yesterday := placeSingle(t, sf, "a@example.com")
	sf.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	delivered := placeSingle(t, sf, "a@example.com")
	cancelled := placeSingle(t, sf, "b@example.com")
	placeSingle(t, sf, "c@example.com")

	_, err := sf.orders.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: delivered.ID, Status: "delivered"})
	require.NoError(t, err)
	_, err = sf.orders.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: cancelled.ID, Status: "cancelled"})
	require.NoError(t, err)

	stats, err := sf.orders.AdminStats(ctx, time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 2, stats.ActiveOrders)
	assert.Equal(t, 3, stats.TodayOrders)
	assert.True(t, stats.TotalRevenue.Equal(yesterday.TotalAmount.Mul(dec(t, "4"))))
}

func TestAdminStatsUsesLocation(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	sf.now = time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)
	placeSingle(t, sf, "a@example.com")

	tokyo := time.FixedZone("JST", 9*60*60)
	svc, err := NewOrderService(OrderServiceDeps{Orders: sf.orderRepo, Cart: sf.cartRepo, Location: tokyo})
	require.NoError(t, err)

	stats, err := svc.AdminStats(ctx, time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TodayOrders)

	stats, err = sf.orders.AdminStats(ctx, time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TodayOrders)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	mine := placeSingle(t, sf, "sarah@example.com")
	placeSingle(t, sf, "sarah@example.com")
	placeSingle(t, sf, "other@example.com")
	_, err := sf.orders.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: mine.ID, Status: "delivered"})
	require.NoError(t, err)

	_, err = sf.orders.DashboardStats(ctx, domain.Anonymous{})
	require.ErrorIs(t, err, ErrSessionRequired)

	session := domain.SignedIn{User: User{ID: "u1", Email: "sarah@example.com", Favorites: []string{"1", "3"}}}
	stats, err := sf.orders.DashboardStats(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{TotalOrders: 2, Delivered: 1, InProgress: 1, Favorites: 2}, stats)
}

func TestOrderHistorySurvivesRestart(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	order := placeSingle(t, sf, "a@example.com")

	restarted := newStorefrontWithStore(t, sf.store)
	got, err := restarted.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.True(t, order.TotalAmount.Equal(got.TotalAmount))
	assert.True(t, order.CreatedAt.Equal(got.CreatedAt))
}
