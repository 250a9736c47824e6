package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	query := `
	INSERT INTO task (` + taskColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING ` + taskColumns

	row, err := scanTaskRow(r.db.QueryRow(ctx, query, taskArgs(task)...))
	if err != nil {
		return nil, err
	}
	return row.toEntity()
}

func (r *TaskRepository) GetByTaskId(ctx context.Context, taskId string) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task WHERE id = $1`

	row, err := scanTaskRow(r.db.QueryRow(ctx, query, taskId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toEntity()
}

// Update - частичное обновление, возвращает полную запись
func (r *TaskRepository) Update(ctx context.Context, id string, patch *entity.TaskPatch) (*entity.Task, error) {
	cols, args := patchColumns(patch)
	if len(cols) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	// Динамически строим SET часть запроса
	set := make([]string, 0, len(cols)+1)
	for i, col := range cols {
		set = append(set, col+" = $"+strconv.Itoa(i+1))
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")

	query := `
	UPDATE task
	SET ` + strings.Join(set, ", ") + `
	WHERE id = $` + strconv.Itoa(len(args)+1) + `
	RETURNING ` + taskColumns
	args = append(args, id)

	row, err := scanTaskRow(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toEntity()
}

// Delete - удаление задачи
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM task WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrTaskNotFound
	}
	return nil
}

// List - задачи владельца в порядке создания, с фильтром по статусу
func (r *TaskRepository) List(ctx context.Context, ownerID string, status string) ([]entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task WHERE owner_id = $1`
	args := []any{ownerID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}

	query += " ORDER BY seq ASC"

	rows, err := r.db.Query(ctx, query, args...)
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
