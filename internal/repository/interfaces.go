package repository

import (
	"context"

	"github.com/St1cky1/taskboard/internal/entity"
)

// ITaskRepository - интерфейс для хранилищ задач (postgres, sqlite, кэш)
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByTaskId(ctx context.Context, taskId string) (*entity.Task, error)
	Update(ctx context.Context, id string, patch *entity.TaskPatch) (*entity.Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string, status string) ([]entity.Task, error)
}

// ITaskAuditRepository - интерфейс для TaskAuditRepository
type ITaskAuditRepository interface {
	Create(ctx context.Context, audit *entity.TaskAudit) error
	GetByTaskAuditId(ctx context.Context, taskId string) ([]entity.TaskAudit, error)
}
