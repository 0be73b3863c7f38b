// Package schema names the persisted objects and fields shared by the access
// gate, the change-event truncation, and the stores, and exposes per-field
// length metadata.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"
)

// Destination objects (table names).
const (
	ObjectUserMapping  = "user_mappings"
	ObjectMappingLog   = "mapping_logs"
	ObjectLoginHistory = "login_history"
)

// Change-event objects. They are never persisted; the access gate checks
// create capability on them before publishing.
const (
	ObjectLogEvent          = "mapping_log_events"
	ObjectLoginHistoryEvent = "login_history_events"
	ObjectMappingTouchEvent = "mapping_touch_events"
)

// Field names (column names on the destination objects).
const (
	FieldProviderName     = "provider_name"
	FieldPrincipalID      = "principal_id"
	FieldTargetIdentifier = "target_identifier"
	FieldUniqueKey        = "unique_key"
	FieldLastLogReference = "last_log_reference"
	FieldLastLoginAt      = "last_login_at"
	FieldLoginCount       = "login_count"
	FieldLogID            = "log_id"
	FieldMessage          = "message"
	FieldFlowType         = "flow_type"
	FieldLoggedAt         = "logged_at"
	FieldSuccess          = "success"
	FieldProviderType     = "provider_type"
	FieldInfo             = "info"
)

// Limits reports the maximum character length of a field. Zero means no
// limit is known.
type Limits interface {
	MaxLength(object, field string) int
}

// Static is an in-memory Limits table keyed by object then field.
type Static map[string]map[string]int

func (s Static) MaxLength(object, field string) int {
	return s[object][field]
}

// Defaults mirrors the column sizes in the Postgres migrations.
func Defaults() Static {
	return Static{
		ObjectMappingLog: {
			FieldProviderName: 255,
			FieldPrincipalID:  64,
			FieldLogID:        64,
			FieldMessage:      32768,
		},
		ObjectLoginHistory: {
			FieldProviderName: 255,
			FieldPrincipalID:  64,
			FieldFlowType:     16,
			FieldProviderType: 64,
			FieldInfo:         1024,
		},
		ObjectUserMapping: {
			FieldProviderName:     255,
			FieldPrincipalID:      64,
			FieldTargetIdentifier: 255,
			FieldUniqueKey:        320,
		},
	}
}

// LoadPostgres reads character_maximum_length for the destination tables.
func LoadPostgres(ctx context.Context, db *sql.DB) (Static, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name, column_name, character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name IN ($1, $2, $3)
		  AND character_maximum_length IS NOT NULL
	`, ObjectUserMapping, ObjectMappingLog, ObjectLoginHistory)
	if err != nil {
		return nil, fmt.Errorf("query column metadata: %w", err)
	}
	defer rows.Close()

	limits := Static{}
	for rows.Next() {
		var table, column string
		var max int
		if err := rows.Scan(&table, &column, &max); err != nil {
			return nil, fmt.Errorf("scan column metadata: %w", err)
		}
		if limits[table] == nil {
			limits[table] = map[string]int{}
		}
		limits[table][column] = max
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column metadata: %w", err)
	}
	return limits, nil
}

// Truncate keeps the first max characters of value. It never splits a rune
// and returns value unchanged when max <= 0 or value already fits.
func Truncate(value string, max int) string {
	if max <= 0 || utf8.RuneCountInString(value) <= max {
		return value
	}
	n := 0
	for i := range value {
		if n == max {
			return value[:i]
		}
		n++
	}
	return value
}
