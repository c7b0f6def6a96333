// Package queue_repo provides PostgreSQL storage for the reprint queue and field tasks.
package queue_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"linksoc/internal/domain/reprint"
	"linksoc/internal/infrastructure/storage/postgres"
)

const reprintTable = "fifo_reprint"

var _ reprint.Repository = (*ReprintRepo)(nil)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ReprintRepo stores the reprint queue in fifo_reprint.
type ReprintRepo struct {
	txManager *postgres.TxManager
}

// NewReprintRepo creates a new reprint queue repository.
func NewReprintRepo(txManager *postgres.TxManager) *ReprintRepo {
	return &ReprintRepo{txManager: txManager}
}

// List implements reprint.Repository.
func (r *ReprintRepo) List(ctx context.Context) ([]reprint.Item, error) {
	sql, args, err := builder().
		Select("scan_id", "scanned_at", "position").
		From(reprintTable).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []reprint.Item
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select reprint queue: %w", err)
	}
	return out, nil
}

// Enqueue implements reprint.Repository.
func (r *ReprintRepo) Enqueue(ctx context.Context, id string, at time.Time) error {
	sql, args, err := builder().
		Insert(reprintTable).
		Columns("scan_id", "scanned_at").
		Values(id, at).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", reprintTable, err)
	}
	return nil
}

// Delete implements reprint.Repository.
func (r *ReprintRepo) Delete(ctx context.Context, ids []string) (int, error) {
	q := builder().Delete(reprintTable)
	if len(ids) > 0 {
		q = q.Where(squirrel.Eq{"scan_id": ids})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", reprintTable, err)
	}
	return int(tag.RowsAffected()), nil
}
