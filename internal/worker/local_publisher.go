package worker

import (
	"context"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/repository"
)

// LocalPublisher пишет аудит сразу в журнал, когда брокер не настроен
type LocalPublisher struct {
	auditRepo repository.ITaskAuditRepository
}

func NewLocalPublisher(auditRepo repository.ITaskAuditRepository) *LocalPublisher {
	return &LocalPublisher{auditRepo: auditRepo}
}

func (p *LocalPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	taskAudit, err := convertToTaskAudit(message)
	if err != nil {
		return err
	}
	return p.auditRepo.Create(ctx, taskAudit)
}
