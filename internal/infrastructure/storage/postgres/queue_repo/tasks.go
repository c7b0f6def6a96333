package queue_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"linksoc/internal/domain/tasks"
	"linksoc/internal/infrastructure/storage/postgres"
)

var (
	taskCols = postgres.ExtractDBColumns[tasks.Task]()
	itemCols = postgres.ExtractDBColumns[tasks.Item]()
)

var _ tasks.Repository = (*TaskRepo)(nil)

// TaskRepo reads fifo_tasks and fifo_task_items.
type TaskRepo struct {
	txManager *postgres.TxManager
}

// NewTaskRepo creates a new task repository.
func NewTaskRepo(txManager *postgres.TxManager) *TaskRepo {
	return &TaskRepo{txManager: txManager}
}

// List implements tasks.Repository.
func (r *TaskRepo) List(ctx context.Context) ([]tasks.Task, error) {
	sql, args, err := builder().
		Select(taskCols...).
		From("fifo_tasks").
		OrderBy("created_at", "task_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []tasks.Task
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	return out, nil
}

// Items implements tasks.Repository.
func (r *TaskRepo) Items(ctx context.Context, taskID string) ([]tasks.Item, error) {
	sql, args, err := builder().
		Select(itemCols...).
		From("fifo_task_items").
		Where(squirrel.Eq{"task_id": taskID}).
		OrderBy("item_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []tasks.Item
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select items of task %q: %w", taskID, err)
	}
	return out, nil
}
