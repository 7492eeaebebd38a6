// pkg/tenants/manager.go
package tenants

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ListFunc fetches the live database list for a user from the reporting
// backend. Wired by the gateway through the request router's bootstrap
// /databases endpoint.
type ListFunc func(ctx context.Context, userID string) ([]string, error)

var ErrUnknownDatabase = errors.New("database not in tenant list")

// Manager owns the active tenant selection per user. The in-process map
// is the authoritative value read by request handlers; writes go through
// the store so selections survive restarts. Select updates the map before
// returning, so a request issued after Select returns never reads the
// previous value.
type Manager struct {
	log   *zap.SugaredLogger
	store SelectionStore
	list  ListFunc

	mu     sync.RWMutex
	active map[string]string
	gen    map[string]uint64
}

func NewManager(log *zap.SugaredLogger, store SelectionStore, list ListFunc) *Manager {
	return &Manager{
		log:    log,
		store:  store,
		list:   list,
		active: map[string]string{},
		gen:    map[string]uint64{},
	}
}

// Databases fetches the live tenant list. A fetch failure is logged and
// yields an empty list; dependent callers treat that as "no tenant
// selectable yet".
func (m *Manager) Databases(ctx context.Context, userID string) []string {
	names, err := m.list(ctx, userID)
	if err != nil {
		m.log.Errorw("fetch databases", "user", userID, "err", err)
		return nil
	}
	return names
}

// RestoreOrDefault revalidates the persisted selection against the live
// list. A persisted name absent from the list is discarded; the first
// list entry becomes the new selection and is persisted. An empty list
// leaves the selection unset. Returns the adopted name ("" when unset).
func (m *Manager) RestoreOrDefault(ctx context.Context, userID string, list []string) string {
	stored, err := m.store.Load(ctx, userID)
	if err != nil {
		m.log.Warnw("load selection", "user", userID, "err", err)
		stored = ""
	}
	if stored != "" && contains(list, stored) {
		m.adopt(userID, stored)
		return stored
	}
	if len(list) > 0 {
		def := list[0]
		m.adopt(userID, def)
		if err := m.store.Save(ctx, userID, def); err != nil {
			m.log.Warnw("persist default selection", "user", userID, "err", err)
		}
		return def
	}
	return ""
}

// Select makes name the active tenant for the user. The name must be a
// member of the live list. The in-process value is visible to concurrent
// readers before Select returns; persistence failures are logged, the
// in-process value stays authoritative for this session.
func (m *Manager) Select(ctx context.Context, userID, name string, list []string) error {
	if !contains(list, name) {
		return ErrUnknownDatabase
	}
	m.adopt(userID, name)
	if err := m.store.Save(ctx, userID, name); err != nil {
		m.log.Warnw("persist selection", "user", userID, "db", name, "err", err)
	}
	return nil
}

// Active returns the user's current selection, "" when unset.
func (m *Manager) Active(userID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active[userID]
}

// Generation increments on every selection change. Handlers snapshot it
// before an upstream call and discard the response if it moved, so data
// fetched for one tenant is never served after a switch.
func (m *Manager) Generation(userID string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen[userID]
}

// Clear forgets the selection in memory and in the store. Called at
// sign-out before the identity provider round trip.
func (m *Manager) Clear(ctx context.Context, userID string) {
	m.mu.Lock()
	if _, ok := m.active[userID]; ok {
		delete(m.active, userID)
		m.gen[userID]++
	}
	m.mu.Unlock()
	if err := m.store.Clear(ctx, userID); err != nil {
		m.log.Warnw("clear selection", "user", userID, "err", err)
	}
}

func (m *Manager) adopt(userID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[userID] != name {
		m.active[userID] = name
		m.gen[userID]++
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
