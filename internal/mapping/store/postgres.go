package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"idbridge/internal/mapping"
	"idbridge/pkg/platform/sentinel"
	txcontext "idbridge/pkg/platform/tx"
)

// PostgresStore persists mappings in the user_mappings table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const mappingColumns = `id, provider_name, principal_id, target_identifier, unique_key,
	last_log_reference, last_login_at, login_count, created_at, updated_at`

func (s *PostgresStore) FindByKey(ctx context.Context, provider, principal string) (*mapping.Mapping, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+mappingColumns+` FROM user_mappings WHERE provider_name = $1 AND principal_id = $2`,
		provider, principal,
	)
	m, err := scanMapping(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find mapping: %w", err)
	}
	return m, nil
}

// Save inserts a new mapping or changes the target of an existing one. A
// unique key already held by another pair updates nothing and is reported
// as a conflict.
func (s *PostgresStore) Save(ctx context.Context, m *mapping.Mapping) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO user_mappings (`+mappingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (unique_key) DO UPDATE SET
			target_identifier = EXCLUDED.target_identifier,
			updated_at = EXCLUDED.updated_at
		WHERE user_mappings.provider_name = EXCLUDED.provider_name
			AND user_mappings.principal_id = EXCLUDED.principal_id
	`, mappingArgs(m)...)
	if err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}
	saved, err := affected(res)
	if err != nil {
		return err
	}
	if !saved {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) TouchLogReference(ctx context.Context, provider, principal string, logRef uuid.UUID, at time.Time) (bool, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE user_mappings SET last_log_reference = $3, updated_at = $4
		WHERE provider_name = $1 AND principal_id = $2
	`, provider, principal, logRef, at)
	if err != nil {
		return false, fmt.Errorf("touch mapping log reference: %w", err)
	}
	return affected(res)
}

// RecordLogin increments login_count in the database so concurrent
// deliveries for the same pair never lose an increment.
func (s *PostgresStore) RecordLogin(ctx context.Context, provider, principal string, at time.Time) (bool, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE user_mappings
		SET login_count = COALESCE(login_count, 0) + 1, last_login_at = $3, updated_at = $3
		WHERE provider_name = $1 AND principal_id = $2
	`, provider, principal, at)
	if err != nil {
		return false, fmt.Errorf("record mapping login: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func mappingArgs(m *mapping.Mapping) []any {
	var loginCount *int
	if m.LoginCount > 0 {
		count := m.LoginCount
		loginCount = &count
	}
	return []any{
		m.ID, m.ProviderName, m.PrincipalID, m.TargetIdentifier, keyOf(m),
		m.LastLogReference, nullTime(m.LastLoginAt), loginCount, m.CreatedAt, m.UpdatedAt,
	}
}

func scanMapping(row *sql.Row) (*mapping.Mapping, error) {
	var (
		m          mapping.Mapping
		logRef     uuid.NullUUID
		lastLogin  sql.NullTime
		loginCount sql.NullInt64
	)
	err := row.Scan(&m.ID, &m.ProviderName, &m.PrincipalID, &m.TargetIdentifier, &m.UniqueKey,
		&logRef, &lastLogin, &loginCount, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if logRef.Valid {
		ref := logRef.UUID
		m.LastLogReference = &ref
	}
	if lastLogin.Valid {
		at := lastLogin.Time
		m.LastLoginAt = &at
	}
	m.LoginCount = int(loginCount.Int64)
	return &m, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
