package usecase

import (
	"context"
	"maps"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditPublisher интерфейс для публикации аудита (RabbitMQ)
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

// TaskService - серверные правила работы с задачами
type TaskService struct {
	taskRepo  repository.ITaskRepository
	auditRepo repository.ITaskAuditRepository
	publisher AuditPublisher
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewTaskService: publisher может быть nil, тогда аудит не отправляется;
// auditRepo может быть nil, тогда журнал задачи всегда пуст
func NewTaskService(taskRepo repository.ITaskRepository, auditRepo repository.ITaskAuditRepository, publisher AuditPublisher, log logrus.FieldLogger) *TaskService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TaskService{
		taskRepo:  taskRepo,
		auditRepo: auditRepo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, draft *entity.TaskDraft, userID string) (*entity.Task, error) {
	// 1. Валидируем и проставляем значения по умолчанию
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	// 2. id и владельца назначает сервер
	task := &entity.Task{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		Assignee:    draft.Assignee,
		DueDate:     draft.DueDate,
		CreatedAt:   s.now().UTC(),
		OwnerID:     userID,
	}

	// 3. Сохраняем
	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	// 4. Асинхронно отправляем аудит
	s.sendAuditMessage(entity.ActionCreate, userID, nil, created)

	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string, userID string) (*entity.Task, error) {
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	// Проверяем права доступа
	if task.OwnerID != userID {
		return nil, entity.ErrForbidden
	}

	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID string, userID string, patch *entity.TaskPatch) (*entity.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	// 1. Текущая задача и права доступа
	oldTask, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	// Патч, который ничего не меняет, не пишем и не аудируем
	next := patch.Apply(*oldTask)
	if maps.Equal(taskValues(oldTask), taskValues(&next)) {
		return oldTask, nil
	}

	// 2. Обновляем, хранилище возвращает полную запись
	updatedTask, err := s.taskRepo.Update(ctx, taskID, patch)
	if err != nil {
		return nil, err
	}
	if updatedTask == nil {
		return nil, entity.ErrTaskNotFound
	}

	s.sendAuditMessage(entity.ActionUpdate, userID, oldTask, updatedTask)

	return updatedTask, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID string, userID string) error {
	// 1. Получаем задачу (для аудита и проверки прав)
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return err
	}

	// 2. Удаляем задачу
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}

	s.sendAuditMessage(entity.ActionDelete, userID, task, nil)

	return nil
}

// TaskAudit - журнал изменений задачи, новые записи первыми
func (s *TaskService) TaskAudit(ctx context.Context, taskID string, userID string) ([]entity.TaskAudit, error) {
	if _, err := s.GetTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	if s.auditRepo == nil {
		return []entity.TaskAudit{}, nil
	}

	audits, err := s.auditRepo.GetByTaskAuditId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if audits == nil {
		audits = []entity.TaskAudit{}
	}
	return audits, nil
}

func (s *TaskService) ListTasks(ctx context.Context, userID string, status string) ([]entity.Task, error) {
	if status != "" && !entity.Status(status).Valid() {
		return nil, &entity.ValidationError{Field: "status", Reason: "must be one of todo, in-progress, done"}
	}
	tasks, err := s.taskRepo.List(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []entity.Task{}
	}
	return tasks, nil
}

func taskValues(t *entity.Task) map[string]any {
	values := map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"assignee_id": t.AssigneeID(),
	}
	if t.Assignee != nil {
		values["assignee_name"] = t.Assignee.Name
		values["assignee_avatar"] = t.Assignee.Avatar
	}
	if t.HasDueDate() {
		values["due_date"] = t.DueDate.String()
	}
	return values
}

// Вспомогательный метод для отправки аудита
func (s *TaskService) sendAuditMessage(action entity.ActionType, userID string, oldTask, newTask *entity.Task) {
	if s.publisher == nil {
		return
	}

	auditMsg := &entity.AuditMessage{
		Action:    action,
		UserID:    userID,
		Timestamp: s.now().UTC(),
	}

	switch action {
	case entity.ActionCreate:
		auditMsg.EntityID = newTask.ID
		auditMsg.NewValues = taskValues(newTask)

	case entity.ActionUpdate:
		auditMsg.EntityID = newTask.ID
		auditMsg.OldValues = taskValues(oldTask)
		auditMsg.NewValues = taskValues(newTask)
		// Вычисляем изменения
		changes := make(map[string]any)
		for field, oldValue := range auditMsg.OldValues {
			if newValue, ok := auditMsg.NewValues[field]; !ok || newValue != oldValue {
				changes[field] = map[string]any{"old": oldValue, "new": auditMsg.NewValues[field]}
			}
		}
		for field, newValue := range auditMsg.NewValues {
			if _, ok := auditMsg.OldValues[field]; !ok {
				changes[field] = map[string]any{"old": nil, "new": newValue}
			}
		}
		auditMsg.Changes = changes

	case entity.ActionDelete:
		auditMsg.EntityID = oldTask.ID
		auditMsg.OldValues = taskValues(oldTask)
	}

	// Асинхронная отправка
	go func() {
		log := s.log.WithFields(logrus.Fields{"action": action, "task_id": auditMsg.EntityID})
		if err := s.publisher.PublishAuditMessage(context.Background(), auditMsg); err != nil {
			log.WithError(err).Error("ошибка отправки аудита")
			return
		}
		log.Debug("аудит отправлен")
	}()
}
