package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"idbridge/internal/providers"
)

// PostgresStore reads providers from the auth_providers table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Existing(ctx context.Context, names []string) (map[string]bool, error) {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, providers.Normalize(n))
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT lower(name) FROM auth_providers WHERE lower(name) = ANY($1)`,
		pq.Array(keys),
	)
	if err != nil {
		return nil, fmt.Errorf("query auth providers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool, len(keys))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan auth provider: %w", err)
		}
		out[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auth providers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Register(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_providers (name) VALUES ($1) ON CONFLICT DO NOTHING`,
		name,
	)
	if err != nil {
		return fmt.Errorf("register auth provider: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_providers WHERE lower(name) = $1`,
		providers.Normalize(name),
	)
	if err != nil {
		return fmt.Errorf("remove auth provider: %w", err)
	}
	return nil
}
