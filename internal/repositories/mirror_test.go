package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/repositories"
	"github.com/Noore22/Cake-Craft/internal/repositories/memory"
)

func TestCartRepositoryEmptyNamespace(t *testing.T) {
	repo, err := repositories.NewCartRepository(memory.NewStateStore(nil))
	if err != nil {
		t.Fatalf("NewCartRepository: %v", err)
	}
	cakes, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cakes == nil || len(cakes) != 0 {
		t.Fatalf("expected empty non-nil cart, got %#v", cakes)
	}
}

func TestMirrorRoundTripAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore(nil)

	orders, _ := repositories.NewOrderRepository(store)
	created := time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC)
	order := domain.Order{
		ID:          "ORD-1",
		Status:      domain.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("55.5"),
		Customer:    domain.CustomerInfo{Name: "Sarah Johnson", Email: "sarah@example.com"},
		CreatedAt:   created,
	}
	if err := orders.Save(ctx, []domain.Order{order}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	payload, ok, err := store.Load(ctx, repositories.NamespaceOrders)
	if err != nil || !ok {
		t.Fatalf("expected orders namespace to be written, ok=%v err=%v", ok, err)
	}
	if len(payload) == 0 || payload[0] != '[' {
		t.Fatalf("expected a JSON array payload, got %s", payload)
	}

	reopened, _ := repositories.NewOrderRepository(store)
	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 order, got %d", len(loaded))
	}
	got := loaded[0]
	if got.ID != "ORD-1" || got.Status != domain.OrderStatusPending || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected order %#v", got)
	}
	if !got.TotalAmount.Equal(order.TotalAmount) {
		t.Fatalf("expected total %s, got %s", order.TotalAmount, got.TotalAmount)
	}
}

func TestMirrorLoadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo, _ := repositories.NewCartRepository(memory.NewStateStore(nil))
	if err := repo.Save(ctx, []domain.CustomCake{{ID: "cake-1"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, _ := repo.Load(ctx)
	first[0].ID = "mutated"
	second, _ := repo.Load(ctx)
	if second[0].ID != "cake-1" {
		t.Fatalf("expected cached cart to be isolated from callers, got %s", second[0].ID)
	}
}

func TestMirrorCorruptPayload(t *testing.T) {
	store := memory.NewStateStore(map[string][]byte{repositories.NamespaceCart: []byte("{not json")})
	repo, _ := repositories.NewCartRepository(store)

	_, err := repo.Load(context.Background())
	var mirrorErr *repositories.MirrorError
	if !errors.As(err, &mirrorErr) {
		t.Fatalf("expected MirrorError, got %v", err)
	}
	if mirrorErr.Namespace != repositories.NamespaceCart {
		t.Fatalf("unexpected namespace %s", mirrorErr.Namespace)
	}
	var repoErr repositories.RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsConflict() {
		t.Fatalf("expected conflict classification, got %v", err)
	}
}

func TestLockingUnitOfWorkHonoursCancellation(t *testing.T) {
	uow := repositories.NewLockingUnitOfWork()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.RunInTx(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancelled tx to be skipped, err=%v called=%v", err, called)
	}

	if err := uow.RunInTx(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunInTx: %v", err)
	}
}
