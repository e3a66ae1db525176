package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	pfirestore "github.com/Noore22/Cake-Craft/internal/platform/firestore"
	"github.com/Noore22/Cake-Craft/internal/repositories"
)

const defaultStateCollection = "storefront_state"

// stateDocument stores one mirror namespace. The payload is kept as a JSON
// string so the collection shape stays opaque to Firestore.
type stateDocument struct {
	Namespace string    `firestore:"namespace"`
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// StateStore mirrors storefront namespaces to one Firestore document each.
type StateStore struct {
	docs  *pfirestore.Collection[stateDocument]
	clock func() time.Time
}

var _ repositories.StateStore = (*StateStore)(nil)

// NewStateStore binds the mirror to collection, defaulting to storefront_state.
func NewStateStore(source pfirestore.ClientSource, collection string) (*StateStore, error) {
	if source == nil {
		return nil, errors.New("state store: firestore client source is required")
	}
	if strings.TrimSpace(collection) == "" {
		collection = defaultStateCollection
	}
	return &StateStore{
		docs:  pfirestore.NewCollection[stateDocument](source, collection),
		clock: time.Now,
	}, nil
}

func (s *StateStore) Load(ctx context.Context, namespace string) ([]byte, bool, error) {
	doc, err := s.docs.Get(ctx, namespace)
	if pfirestore.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc.Data.Payload), true, nil
}

func (s *StateStore) Save(ctx context.Context, namespace string, payload []byte) error {
	_, err := s.docs.Set(ctx, namespace, stateDocument{
		Namespace: namespace,
		Payload:   string(payload),
		UpdatedAt: s.clock().UTC(),
	})
	return err
}

// Ping confirms the state collection is reachable.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.docs.Probe(ctx)
}
