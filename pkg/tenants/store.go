package tenants

import "context"

// SelectionStore persists the last-selected database name per user so a
// returning session restores the same tenant without re-selecting.
// Load returns "" (no error) when nothing is stored.
type SelectionStore interface {
	Load(ctx context.Context, userID string) (string, error)
	Save(ctx context.Context, userID, name string) error
	Clear(ctx context.Context, userID string) error
}
