package repositories

import (
	"context"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

// Mirror namespaces. Each holds one JSON-encoded collection.
const (
	NamespaceCart   = "cart"
	NamespaceOrders = "orders"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// StateStore is the key/value persistence mirror. Load reports false when the
// namespace has never been written.
type StateStore interface {
	Load(ctx context.Context, namespace string) ([]byte, bool, error)
	Save(ctx context.Context, namespace string, payload []byte) error
}

// UnitOfWork serialises a read-modify-write sequence across repositories.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CartRepository persists the shopping cart as a whole collection.
type CartRepository interface {
	Load(ctx context.Context) ([]domain.CustomCake, error)
	Save(ctx context.Context, cakes []domain.CustomCake) error
}

// OrderRepository persists the order history as a whole collection.
type OrderRepository interface {
	Load(ctx context.Context) ([]domain.Order, error)
	Save(ctx context.Context, orders []domain.Order) error
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
