// pkg/tenants/memory.go
package tenants

import (
	"context"
	"sync"
)

// memStore keeps selections in process memory. Used in dev when neither
// Redis nor Postgres is configured, and in tests.
type memStore struct {
	mu   sync.RWMutex
	byID map[string]string
}

func NewMemoryStore() SelectionStore {
	return &memStore{byID: map[string]string{}}
}

func (m *memStore) Load(ctx context.Context, userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[userID], nil
}

func (m *memStore) Save(ctx context.Context, userID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[userID] = name
	return nil
}

func (m *memStore) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, userID)
	return nil
}
