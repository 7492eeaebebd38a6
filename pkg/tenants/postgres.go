// pkg/tenants/postgres.go
package tenants

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgStore persists selections in Postgres, one row per user.
type pgStore struct {
	dbPool *pgxpool.Pool
}

func NewPostgresStore(dbPool *pgxpool.Pool) SelectionStore {
	return &pgStore{dbPool: dbPool}
}

// EnsureSchema creates the selections table if it does not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenant_selections (
  user_id text PRIMARY KEY,
  database_name text NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
`)
	return err
}

func (s *pgStore) Load(ctx context.Context, userID string) (string, error) {
	var name string
	err := s.dbPool.QueryRow(ctx,
		`SELECT database_name FROM tenant_selections WHERE user_id=$1`, userID).Scan(&name)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *pgStore) Save(ctx context.Context, userID, name string) error {
	_, err := s.dbPool.Exec(ctx, `INSERT INTO tenant_selections(user_id, database_name)
	  VALUES ($1,$2)
	  ON CONFLICT (user_id) DO UPDATE SET database_name=EXCLUDED.database_name, updated_at=NOW()`,
		userID, name)
	return err
}

func (s *pgStore) Clear(ctx context.Context, userID string) error {
	_, err := s.dbPool.Exec(ctx, `DELETE FROM tenant_selections WHERE user_id=$1`, userID)
	return err
}
