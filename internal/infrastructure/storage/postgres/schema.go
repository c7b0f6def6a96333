package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

//go:embed schema.sql
var schemaSQL string

// RequiredColumns is the schema contract checked at startup.
var RequiredColumns = map[string][]string{
	"fifo_labels":       {"position", "qr_code", "id_um", "id_dois", "serie", "print_count", "last_printed_at", "created_at"},
	"fifo_reprint":      {"position", "scan_id", "scanned_at"},
	"fifo_tasks":        {"task_id", "created_at", "status", "responsible"},
	"fifo_task_items":   {"item_id", "task_id", "lacre_id"},
	"flow_status_rules": {"position", "status", "flow", "meaning", "color"},
	"fifo_auth":         {"id", "password_hash"},
	"sys_audit":         {"id", "entity_type", "entity_key", "action", "operator", "changes", "changes_compressed", "compression_algo", "created_at"},
	"sys_idempotency":   {"idempotency_key", "operator", "operation", "status", "request_hash", "response", "response_status", "response_content_type", "created_at", "updated_at", "expires_at"},
}

// Migrate creates missing tables and indexes. It is idempotent.
func Migrate(ctx context.Context, txManager *TxManager) error {
	return txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := txManager.GetQuerier(ctx).Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		return nil
	})
}

// SchemaError lists the tables and columns missing from the database.
type SchemaError struct {
	Missing map[string][]string
}

func (e *SchemaError) Error() string {
	tables := make([]string, 0, len(e.Missing))
	for t := range e.Missing {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		parts = append(parts, fmt.Sprintf("%s(%s)", t, strings.Join(e.Missing[t], ", ")))
	}
	return "schema mismatch, missing: " + strings.Join(parts, "; ")
}

// ValidateSchema checks RequiredColumns against information_schema.
// Returns *SchemaError when something is missing.
func ValidateSchema(ctx context.Context, txManager *TxManager) error {
	tables := make([]string, 0, len(RequiredColumns))
	for t := range RequiredColumns {
		tables = append(tables, t)
	}

	sql, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("table_name", "column_name").
		From("information_schema.columns").
		Where("table_schema = current_schema()").
		Where(squirrel.Eq{"table_name": tables}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build schema query: %w", err)
	}

	var rows []struct {
		Table  string `db:"table_name"`
		Column string `db:"column_name"`
	}
	if err := pgxscan.Select(ctx, txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	present := make(map[string]bool, len(rows))
	for _, r := range rows {
		present[r.Table+"."+r.Column] = true
	}

	missing := make(map[string][]string)
	for table, cols := range RequiredColumns {
		for _, c := range cols {
			if !present[table+"."+c] {
				missing[table] = append(missing[table], c)
			}
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
