package memory

import (
	"context"
	"slices"
	"sync"
)

// StateStore keeps mirror payloads in process memory.
type StateStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewStateStore returns an empty store, optionally seeded with payloads.
func NewStateStore(seed map[string][]byte) *StateStore {
	values := make(map[string][]byte, len(seed))
	for ns, payload := range seed {
		values[ns] = slices.Clone(payload)
	}
	return &StateStore{values: values}
}

func (s *StateStore) Load(ctx context.Context, namespace string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.values[namespace]
	return slices.Clone(payload), ok, nil
}

func (s *StateStore) Save(ctx context.Context, namespace string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[namespace] = slices.Clone(payload)
	return nil
}

// Ping always succeeds; it lets the memory backend join readiness checks.
func (s *StateStore) Ping(context.Context) error { return nil }
