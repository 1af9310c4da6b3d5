package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
)

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO tasks (title, location, urgency, description, status, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		task.Title,
		task.Location,
		task.Urgency,
		task.Description,
		task.Status,
		task.IsActive,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id int64) (*model.Task, error) {
	query := `SELECT * FROM tasks WHERE id = $1`
	var task model.Task
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	query := `
		UPDATE tasks SET title = $1, location = $2, urgency = $3, description = $4, updated_at = $5
		WHERE id = $6
	`
	task.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Location,
		task.Urgency,
		task.Description,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, status model.TaskStatus) error {
	query := `UPDATE tasks SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %d does not exist", id)
	}
	return nil
}

func (r *taskRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE tasks SET is_active = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set task active flag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %d does not exist", id)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM tasks WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (r *taskRepository) List(ctx context.Context, filter *model.TaskFilter) ([]*model.Task, error) {
	query := `SELECT * FROM tasks`
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil && filter.Urgency != "" {
		args = append(args, filter.Urgency)
		conds = append(conds, fmt.Sprintf("urgency = $%d", len(args)))
	}
	if filter != nil && filter.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var tasks []*model.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks WHERE is_active = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("failed to count active tasks: %w", err)
	}
	return count, nil
}
