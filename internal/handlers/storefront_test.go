package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Noore22/Cake-Craft/internal/catalog"
	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/platform/format"
	"github.com/Noore22/Cake-Craft/internal/repositories"
	"github.com/Noore22/Cake-Craft/internal/repositories/memory"
	"github.com/Noore22/Cake-Craft/internal/services"
)

var testNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

type nopPublisher struct{}

func (nopPublisher) PublishOrderEvent(context.Context, services.OrderEvent) error { return nil }

type testStorefront struct {
	router     chi.Router
	cart       services.CartService
	orders     services.OrderService
	customizer services.CustomizerService
	config     *services.Configurator
}

func newTestStorefront(t *testing.T, user domain.User) *testStorefront {
	t.Helper()

	cat := catalog.Default()
	store := memory.NewStateStore(nil)
	cartRepo, err := repositories.NewCartRepository(store)
	if err != nil {
		t.Fatalf("cart repository: %v", err)
	}
	orderRepo, err := repositories.NewOrderRepository(store)
	if err != nil {
		t.Fatalf("order repository: %v", err)
	}
	unit := repositories.NewLockingUnitOfWork()
	clock := func() time.Time { return testNow }
	seq := 0
	ids := func() string {
		seq++
		return fmt.Sprintf("ID%04d", seq)
	}

	promotions, err := services.NewPromotionService(services.DefaultCoupons())
	if err != nil {
		t.Fatalf("promotions: %v", err)
	}
	engine, err := services.NewPricingEngine(services.PricingEngineDeps{Rules: services.DefaultPricingRules(), Promotions: promotions})
	if err != nil {
		t.Fatalf("pricing engine: %v", err)
	}
	configurator, err := services.NewConfigurator(cat, services.DefaultPricingRules())
	if err != nil {
		t.Fatalf("configurator: %v", err)
	}
	cart, err := services.NewCartService(services.CartServiceDeps{Cart: cartRepo, Pricing: engine, UnitOfWork: unit, IDGenerator: ids})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	customizer, err := services.NewCustomizerService(services.CustomizerServiceDeps{Configurator: configurator, Cart: cart, Clock: clock, IDGenerator: ids})
	if err != nil {
		t.Fatalf("customizer service: %v", err)
	}
	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Cart:        cartRepo,
		Orders:      orderRepo,
		Pricing:     engine,
		UnitOfWork:  unit,
		Events:      nopPublisher{},
		Meter:       noop.NewMeterProvider().Meter("test"),
		Clock:       clock,
		IDGenerator: ids,
	})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}
	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:      orderRepo,
		Cart:        cartRepo,
		UnitOfWork:  unit,
		Events:      nopPublisher{},
		Clock:       clock,
		IDGenerator: ids,
	})
	if err != nil {
		t.Fatalf("order service: %v", err)
	}
	money, err := format.NewMoneyFormatter("en-US", "USD")
	if err != nil {
		t.Fatalf("money formatter: %v", err)
	}

	router := NewRouter(
		WithMiddlewares(SessionMiddleware(services.NewSessionService(user))),
		WithCatalogRoutes(NewCatalogHandlers(cat, money).Routes),
		WithCustomizerRoutes(NewCustomizerHandlers(customizer, configurator, money).Routes),
		WithCartRoutes(NewCartHandlers(cart, money).Routes),
		WithCheckoutRoutes(NewCheckoutHandlers(checkout, cat, money, WithCheckoutClock(clock)).Routes),
		WithOrderRoutes(NewOrderHandlers(orders, money).Routes),
		WithMeRoutes(NewMeHandlers(orders).Routes),
		WithAdminRoutes(NewAdminHandlers(orders, money, WithAdminClock(clock)).Routes),
	)
	return &testStorefront{router: router, cart: cart, orders: orders, customizer: customizer, config: configurator}
}

func (s *testStorefront) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// addClassicCake puts a vanilla round medium cake with white buttercream in the cart.
func (s *testStorefront) addClassicCake(t *testing.T, message string) services.CustomCake {
	t.Helper()
	cfg, err := s.config.SelectBase(services.Configuration{}, "vanilla")
	if err == nil {
		cfg, err = s.config.SelectShape(cfg, "round")
	}
	if err == nil {
		cfg, err = s.config.SelectSize(cfg, "medium")
	}
	if err == nil {
		cfg, err = s.config.SelectFrosting(cfg, "buttercream-white")
	}
	if err != nil {
		t.Fatalf("build configuration: %v", err)
	}
	cake, err := s.config.Finalize(s.config.SetMessage(cfg, message), "")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	items, err := s.cart.Add(context.Background(), cake)
	if err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	return items[len(items)-1]
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	payload := decodeJSON[map[string]any](t, rr)
	code, _ := payload["error"].(string)
	return code
}

func demoUser() domain.User {
	return domain.User{
		ID:        "user-1",
		Name:      "Sarah Johnson",
		Email:     "sarah@example.com",
		Phone:     "+1 (555) 123-4567",
		Address:   "123 Baker Street",
		Favorites: []string{"1", "2"},
	}
}
