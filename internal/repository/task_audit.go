package repository

import (
	"context"
	"database/sql"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskAuditRepository struct {
	db *pgxpool.Pool
}

func NewTaskAuditRepository(db *pgxpool.Pool) *TaskAuditRepository {
	return &TaskAuditRepository{
		db: db,
	}
}

func (r *TaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	query := `
	INSERT INTO task_audit (user_id, action, entity_type, entity_id, old_values, new_values, changes, changed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	return r.db.QueryRow(
		ctx,
		query,
		audit.UserID,
		string(audit.Action),
		audit.EntityType,
		audit.EntityID,
		audit.OldValues,
		audit.NewValues,
		audit.Changes,
		audit.ChangesAt,
	).Scan(&audit.ID)
}

func (r *TaskAuditRepository) GetByTaskAuditId(ctx context.Context, taskId string) ([]entity.TaskAudit, error) {
	query := `
	SELECT id, user_id, action, entity_type, entity_id, old_values, new_values, changes, changed_at
	FROM task_audit
	WHERE entity_id = $1 AND entity_type = 'task'
	ORDER BY changed_at DESC
	`
	rows, err := r.db.Query(ctx, query, taskId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []entity.TaskAudit
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}

const sqliteAuditSchema = `
CREATE TABLE IF NOT EXISTS task_audit (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     TEXT NOT NULL,
	action      TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	old_values  TEXT,
	new_values  TEXT,
	changes     TEXT,
	changed_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_audit_entity ON task_audit (entity_type, entity_id);
`

// SQLiteTaskAuditRepository - журнал аудита рядом с задачами в SQLite
type SQLiteTaskAuditRepository struct {
	db *sql.DB
}

func NewSQLiteTaskAuditRepository(ctx context.Context, db *sql.DB) (*SQLiteTaskAuditRepository, error) {
	if _, err := db.ExecContext(ctx, sqliteAuditSchema); err != nil {
		return nil, err
	}
	return &SQLiteTaskAuditRepository{db: db}, nil
}

func (r *SQLiteTaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO task_audit (user_id, action, entity_type, entity_id, old_values, new_values, changes, changed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		audit.UserID,
		string(audit.Action),
		audit.EntityType,
		audit.EntityID,
		audit.OldValues,
		audit.NewValues,
		audit.Changes,
		audit.ChangesAt.UTC(),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	audit.ID = int(id)
	return nil
}

func (r *SQLiteTaskAuditRepository) GetByTaskAuditId(ctx context.Context, taskId string) ([]entity.TaskAudit, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, action, entity_type, entity_id, old_values, new_values, changes, changed_at
	FROM task_audit
	WHERE entity_id = ? AND entity_type = 'task'
	ORDER BY changed_at DESC, id DESC`, taskId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []entity.TaskAudit
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}

func scanAudit(s scanner) (entity.TaskAudit, error) {
	var audit entity.TaskAudit
	var action string
	err := s.Scan(
		&audit.ID,
		&audit.UserID,
		&action,
		&audit.EntityType,
		&audit.EntityID,
		&audit.OldValues,
		&audit.NewValues,
		&audit.Changes,
		&audit.ChangesAt,
	)
	audit.Action = entity.ActionType(action)
	return audit, err
}
