package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"idbridge/internal/auditlog"
	id "idbridge/pkg/domain"
	txcontext "idbridge/pkg/platform/tx"
)

// PostgresStore writes to mapping_logs and login_history. Multi-row inserts
// make each call atomic even outside a transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) InsertLogs(ctx context.Context, entries []*auditlog.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	args := make([]any, 0, len(entries)*6)
	for _, e := range entries {
		args = append(args, e.ID, e.ProviderName, e.PrincipalID, e.LogID, e.Message, e.CreatedAt)
	}
	query := `INSERT INTO mapping_logs (id, provider_name, principal_id, log_id, message, created_at) VALUES ` +
		valuesClause(len(entries), 6)
	if _, err := s.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert mapping logs: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertLoginHistory(ctx context.Context, entries []*auditlog.LoginHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	args := make([]any, 0, len(entries)*9)
	for _, e := range entries {
		args = append(args, e.ID, e.ProviderName, e.PrincipalID, e.FlowType.String(), e.Timestamp,
			e.Success, nullString(e.ProviderType), nullString(e.Info), e.CreatedAt)
	}
	query := `INSERT INTO login_history (id, provider_name, principal_id, flow_type, logged_at,
		success, provider_type, info, created_at) VALUES ` + valuesClause(len(entries), 9)
	if _, err := s.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert login history: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLogs(ctx context.Context, provider, principal string) ([]*auditlog.LogEntry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, provider_name, principal_id, log_id, message, created_at
		FROM mapping_logs WHERE provider_name = $1 AND principal_id = $2
		ORDER BY created_at, id
	`, provider, principal)
	if err != nil {
		return nil, fmt.Errorf("list mapping logs: %w", err)
	}
	defer rows.Close()

	var out []*auditlog.LogEntry
	for rows.Next() {
		var e auditlog.LogEntry
		if err := rows.Scan(&e.ID, &e.ProviderName, &e.PrincipalID, &e.LogID, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mapping log: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListLoginHistory(ctx context.Context, provider, principal string) ([]*auditlog.LoginHistoryEntry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, provider_name, principal_id, flow_type, logged_at, success, provider_type, info, created_at
		FROM login_history WHERE provider_name = $1 AND principal_id = $2
		ORDER BY logged_at, id
	`, provider, principal)
	if err != nil {
		return nil, fmt.Errorf("list login history: %w", err)
	}
	defer rows.Close()

	var out []*auditlog.LoginHistoryEntry
	for rows.Next() {
		var (
			e            auditlog.LoginHistoryEntry
			flow         string
			providerType sql.NullString
			info         sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ProviderName, &e.PrincipalID, &flow, &e.Timestamp, &e.Success,
			&providerType, &info, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan login history: %w", err)
		}
		e.FlowType = id.FlowType(flow)
		if providerType.Valid {
			e.ProviderType = &providerType.String
		}
		if info.Valid {
			e.Info = &info.String
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// valuesClause renders "($1, ..., $cols), (...)" for rows rows.
func valuesClause(rows, cols int) string {
	groups := make([]string, rows)
	for r := range groups {
		ph := make([]string, cols)
		for c := range ph {
			ph[c] = fmt.Sprintf("$%d", r*cols+c+1)
		}
		groups[r] = "(" + strings.Join(ph, ", ") + ")"
	}
	return strings.Join(groups, ", ")
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
