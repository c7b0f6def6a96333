// Package label_repo provides the PostgreSQL implementation of labels.Repository.
package label_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"linksoc/internal/core/apperror"
	"linksoc/internal/domain/labels"
	"linksoc/internal/infrastructure/storage/postgres"
)

const tableName = "fifo_labels"

// allocationLockKey identifies the advisory lock taken by label generators.
const allocationLockKey int64 = 0x4c4e4b534f43 // "LNKSOC"

var selectCols = postgres.ExtractDBColumns[labels.Label]()

var _ labels.Repository = (*LabelRepo)(nil)

// LabelRepo stores labels in fifo_labels. Row order is the position column.
type LabelRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	executor  *postgres.BatchExecutor
}

// NewLabelRepo creates a new label repository.
func NewLabelRepo(txManager *postgres.TxManager) *LabelRepo {
	return &LabelRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		executor:  postgres.NewBatchExecutor(txManager),
	}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *LabelRepo) baseSelect() squirrel.SelectBuilder {
	return builder().
		Select(selectCols...).
		From(tableName).
		OrderBy("position")
}

// All implements labels.Repository.
func (r *LabelRepo) All(ctx context.Context) ([]labels.Label, error) {
	sql, args, err := r.baseSelect().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []labels.Label
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select labels: %w", err)
	}
	return out, nil
}

// FindByCode implements labels.Repository.
func (r *LabelRepo) FindByCode(ctx context.Context, code string) ([]labels.Label, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"qr_code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []labels.Label
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("find label %q: %w", code, err)
	}
	return out, nil
}

// ExistingCodes implements labels.Repository.
func (r *LabelRepo) ExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	upper := make([]string, len(codes))
	for i, c := range codes {
		upper[i] = strings.ToUpper(c)
	}

	sql, args, err := builder().
		Select("DISTINCT qr_code").
		From(tableName).
		Where(squirrel.Expr("upper(qr_code) = ANY(?)", upper)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []string
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select existing codes: %w", err)
	}
	return out, nil
}

// LockForAllocation takes a transaction-scoped advisory lock, so generators
// read and append the table one at a time.
func (r *LabelRepo) LockForAllocation(ctx context.Context) error {
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("LockForAllocation requires transaction context")
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, "SELECT pg_advisory_xact_lock($1)", allocationLockKey); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	return nil
}

// AppendBatch implements labels.Repository.
func (r *LabelRepo) AppendBatch(ctx context.Context, batch []labels.Label) error {
	if len(batch) == 0 {
		return nil
	}

	rows := make([][]any, len(batch))
	for i := range batch {
		rows[i] = postgres.RowValues(&batch[i], selectCols)
	}

	_, err := r.inserter.CopyFromSlice(ctx, tableName, selectCols, rows)
	return err
}

// SetIDs implements labels.Repository.
func (r *LabelRepo) SetIDs(ctx context.Context, code string, match labels.MatchMode, idUm, idDois *string) (*labels.Label, error) {
	sql, args, err := builder().
		Update(tableName).
		Set("id_um", squirrel.Expr("COALESCE(?::text, id_um)", idUm)).
		Set("id_dois", squirrel.Expr("COALESCE(?::text, id_dois)", idDois)).
		Where(firstMatch(code, match)).
		Suffix("RETURNING " + strings.Join(selectCols, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	var out labels.Label
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("label", code)
		}
		return nil, fmt.Errorf("update label %q: %w", code, err)
	}
	return &out, nil
}

// MarkPrinted implements labels.Repository.
func (r *LabelRepo) MarkPrinted(ctx context.Context, codes []string, at time.Time) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	queries := make([]postgres.BatchQuery, 0, len(codes))
	for _, code := range codes {
		sql, args, err := builder().
			Update(tableName).
			Set("print_count", squirrel.Expr("print_count + 1")).
			Set("last_printed_at", at).
			Where(firstMatch(code, labels.MatchFold)).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build update: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	affected, err := r.executor.ExecuteBatch(ctx, queries)
	if err != nil {
		return 0, fmt.Errorf("mark printed: %w", err)
	}

	marked := 0
	for _, n := range affected {
		marked += int(n)
	}
	return marked, nil
}

// firstMatch restricts a statement to the earliest row whose code matches.
func firstMatch(code string, match labels.MatchMode) squirrel.Sqlizer {
	cond := "qr_code = ?"
	if match == labels.MatchFold {
		cond = "upper(qr_code) = upper(?)"
	}
	return squirrel.Expr(
		"position = (SELECT position FROM "+tableName+" WHERE "+cond+" ORDER BY position LIMIT 1)",
		code,
	)
}
