package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/St1cky1/taskboard/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS task (
	id              TEXT PRIMARY KEY,
	owner_id        TEXT NOT NULL,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL CHECK (status IN ('todo', 'in-progress', 'done')),
	priority        TEXT NOT NULL CHECK (priority IN ('low', 'medium', 'high')),
	assignee_id     TEXT,
	assignee_name   TEXT,
	assignee_avatar TEXT,
	due_date        TEXT,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_task_owner ON task (owner_id);
`

// SQLiteTaskRepository - хранилище задач для одиночного узла и разработки
type SQLiteTaskRepository struct {
	db *sql.DB
}

// NewSQLiteTaskRepository создает схему, если ее еще нет
func NewSQLiteTaskRepository(ctx context.Context, db *sql.DB) (*SQLiteTaskRepository, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, err
	}
	return &SQLiteTaskRepository{db: db}, nil
}

func (r *SQLiteTaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	query := `INSERT INTO task (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, taskArgs(task)...); err != nil {
		return nil, err
	}
	return r.GetByTaskId(ctx, task.ID)
}

func (r *SQLiteTaskRepository) GetByTaskId(ctx context.Context, taskId string) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task WHERE id = ?`

	row, err := scanTaskRow(r.db.QueryRowContext(ctx, query, taskId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toEntity()
}

func (r *SQLiteTaskRepository) Update(ctx context.Context, id string, patch *entity.TaskPatch) (*entity.Task, error) {
	cols, args := patchColumns(patch)
	if len(cols) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	set := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		set = append(set, col+" = ?")
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")

	query := `UPDATE task SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.GetByTaskId(ctx, id)
}

func (r *SQLiteTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM task WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrTaskNotFound
	}
	return nil
}

func (r *SQLiteTaskRepository) List(ctx context.Context, ownerID string, status string) ([]entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task WHERE owner_id = ?`
	args := []any{ownerID}

	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY rowid ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []entity.Task{}
	for rows.Next() {
		row, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		task, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}
