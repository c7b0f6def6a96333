// Package rule_repo provides PostgreSQL storage for flow-status rules.
package rule_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"linksoc/internal/domain/rules"
	"linksoc/internal/infrastructure/storage/postgres"
)

const tableName = "flow_status_rules"

var selectCols = postgres.ExtractDBColumns[rules.Rule]()

var _ rules.Repository = (*RuleRepo)(nil)

// RuleRepo reads flow_status_rules in insertion order.
type RuleRepo struct {
	txManager *postgres.TxManager
}

// NewRuleRepo creates a new rule repository.
func NewRuleRepo(txManager *postgres.TxManager) *RuleRepo {
	return &RuleRepo{txManager: txManager}
}

// List implements rules.Repository.
func (r *RuleRepo) List(ctx context.Context) ([]rules.Rule, error) {
	sql, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(selectCols...).
		From(tableName).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []rules.Rule
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select rules: %w", err)
	}
	return out, nil
}

// Add inserts rules in order.
func (r *RuleRepo) Add(ctx context.Context, rs ...rules.Rule) error {
	if len(rs) == 0 {
		return nil
	}

	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert(tableName).
		Columns(selectCols...)
	for i := range rs {
		q = q.Values(postgres.RowValues(&rs[i], selectCols)...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", tableName, err)
	}
	return nil
}
