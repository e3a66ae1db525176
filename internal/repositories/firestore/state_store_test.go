package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Noore22/Cake-Craft/internal/platform/config"
	pfirestore "github.com/Noore22/Cake-Craft/internal/platform/firestore"
	"github.com/Noore22/Cake-Craft/internal/repositories"
)

func TestStateStoreAgainstEmulator(t *testing.T) {
	host := os.Getenv("FIRESTORE_EMULATOR_HOST")
	if host == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	provider := pfirestore.NewProvider(config.FirestoreConfig{ProjectID: "cakecraft-test", EmulatorHost: host})
	t.Cleanup(func() { _ = provider.Close(context.Background()) })

	collection := "state_" + time.Now().UTC().Format("150405.000000")
	store, err := NewStateStore(provider, collection)
	if err != nil {
		t.Fatalf("NewStateStore: %v", err)
	}

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	if _, ok, err := store.Load(ctx, repositories.NamespaceCart); err != nil || ok {
		t.Fatalf("expected missing namespace, ok=%v err=%v", ok, err)
	}

	if err := store.Save(ctx, repositories.NamespaceCart, []byte(`[{"id":"cake-1"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cart, err := repositories.NewCartRepository(store)
	if err != nil {
		t.Fatalf("NewCartRepository: %v", err)
	}
	cakes, err := cart.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cakes) != 1 || cakes[0].ID != "cake-1" {
		t.Fatalf("unexpected cart %#v", cakes)
	}
}
