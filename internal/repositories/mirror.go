package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

// MirrorError reports a namespace whose stored payload could not be decoded.
type MirrorError struct {
	Namespace string
	Err       error
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("mirror %s: %v", e.Namespace, e.Err)
}

func (e *MirrorError) Unwrap() error { return e.Err }

func (e *MirrorError) IsNotFound() bool    { return false }
func (e *MirrorError) IsConflict() bool    { return true }
func (e *MirrorError) IsUnavailable() bool { return false }

// collectionMirror caches one namespace in memory and writes the full
// collection back on every save.
type collectionMirror[T any] struct {
	store     StateStore
	namespace string

	mu     sync.Mutex
	loaded bool
	items  []T
}

func newCollectionMirror[T any](store StateStore, namespace string) *collectionMirror[T] {
	return &collectionMirror[T]{store: store, namespace: namespace}
}

func (m *collectionMirror[T]) load(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		payload, ok, err := m.store.Load(ctx, m.namespace)
		if err != nil {
			return nil, err
		}
		items := []T{}
		if ok && len(payload) > 0 {
			if err := json.Unmarshal(payload, &items); err != nil {
				return nil, &MirrorError{Namespace: m.namespace, Err: err}
			}
		}
		m.items = items
		m.loaded = true
	}
	return slices.Clone(m.items), nil
}

func (m *collectionMirror[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return &MirrorError{Namespace: m.namespace, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(ctx, m.namespace, payload); err != nil {
		return err
	}
	m.items = slices.Clone(items)
	m.loaded = true
	return nil
}

type cartMirror struct {
	*collectionMirror[domain.CustomCake]
}

// NewCartRepository returns a CartRepository mirrored to the "cart" namespace.
func NewCartRepository(store StateStore) (CartRepository, error) {
	if store == nil {
		return nil, errors.New("cart repository: state store is required")
	}
	return cartMirror{newCollectionMirror[domain.CustomCake](store, NamespaceCart)}, nil
}

func (m cartMirror) Load(ctx context.Context) ([]domain.CustomCake, error) { return m.load(ctx) }

func (m cartMirror) Save(ctx context.Context, cakes []domain.CustomCake) error {
	return m.save(ctx, cakes)
}

type orderMirror struct {
	*collectionMirror[domain.Order]
}

// NewOrderRepository returns an OrderRepository mirrored to the "orders" namespace.
func NewOrderRepository(store StateStore) (OrderRepository, error) {
	if store == nil {
		return nil, errors.New("order repository: state store is required")
	}
	return orderMirror{newCollectionMirror[domain.Order](store, NamespaceOrders)}, nil
}

func (m orderMirror) Load(ctx context.Context) ([]domain.Order, error) { return m.load(ctx) }

func (m orderMirror) Save(ctx context.Context, orders []domain.Order) error {
	return m.save(ctx, orders)
}

// LockingUnitOfWork runs transactions one at a time within the process.
type LockingUnitOfWork struct {
	mu sync.Mutex
}

// NewLockingUnitOfWork constructs a process-local UnitOfWork.
func NewLockingUnitOfWork() *LockingUnitOfWork {
	return &LockingUnitOfWork{}
}

// RunInTx holds the lock for the duration of fn. Calls must not nest.
func (u *LockingUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(ctx)
}
