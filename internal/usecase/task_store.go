package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/sirupsen/logrus"
)

// TaskGateway - удаленный источник задач (HTTP API)
type TaskGateway interface {
	List(ctx context.Context) ([]entity.Task, error)
	Get(ctx context.Context, id string) (*entity.Task, error)
	Create(ctx context.Context, draft entity.TaskDraft) (*entity.Task, error)
	Update(ctx context.Context, id string, patch entity.TaskPatch) (*entity.Task, error)
	Delete(ctx context.Context, id string) error
}

// TaskStore - канонический список задач текущей сессии.
// Локальные изменения применяются только после подтверждения шлюзом.
type TaskStore struct {
	gateway TaskGateway
	log     logrus.FieldLogger

	mu          sync.RWMutex
	tasks       []entity.Task
	filter      entity.Filter
	searchQuery string
}

type StoreOption func(*TaskStore)

func WithStoreLogger(log logrus.FieldLogger) StoreOption {
	return func(s *TaskStore) {
		if log != nil {
			s.log = log
		}
	}
}

func NewTaskStore(gateway TaskGateway, opts ...StoreOption) *TaskStore {
	s := &TaskStore{
		gateway: gateway,
		log:     logrus.StandardLogger(),
		tasks:   []entity.Task{},
		filter:  entity.DefaultFilter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load заменяет список целиком. При ошибке прежний список остается.
func (s *TaskStore) Load(ctx context.Context) error {
	tasks, err := s.gateway.List(ctx)
	if err != nil {
		s.log.WithError(err).Warn("не удалось загрузить задачи")
		return err
	}

	loaded := make([]entity.Task, len(tasks))
	copy(loaded, tasks)

	s.mu.Lock()
	s.tasks = loaded
	s.mu.Unlock()

	s.log.WithField("count", len(loaded)).Debug("задачи загружены")
	return nil
}

// Refresh - то же, что Load
func (s *TaskStore) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// Fetch перечитывает одну задачу с сервера. Если задача уже в списке,
// локальная запись заменяется ответом; новые задачи в список не попадают.
func (s *TaskStore) Fetch(ctx context.Context, id string) (entity.Task, error) {
	task, err := s.gateway.Get(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("task_id", id).Warn("не удалось получить задачу")
		return entity.Task{}, err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.tasks[i] = *task
	}
	s.mu.Unlock()

	return *task, nil
}

func (s *TaskStore) Create(ctx context.Context, draft entity.TaskDraft) (entity.Task, error) {
	// 1. Валидация до запроса
	if err := draft.Validate(); err != nil {
		return entity.Task{}, err
	}

	// 2. Создаем на сервере
	created, err := s.gateway.Create(ctx, draft)
	if err != nil {
		s.log.WithError(err).Warn("не удалось создать задачу")
		return entity.Task{}, err
	}

	// 3. Добавляем подтвержденную запись в конец
	s.mu.Lock()
	s.tasks = append(s.tasks, *created)
	s.mu.Unlock()

	s.log.WithField("task_id", created.ID).Debug("задача создана")
	return *created, nil
}

func (s *TaskStore) Update(ctx context.Context, id string, patch entity.TaskPatch) (entity.Task, error) {
	if err := patch.Validate(); err != nil {
		return entity.Task{}, err
	}

	updated, err := s.gateway.Update(ctx, id, patch)
	if err != nil {
		s.log.WithError(err).WithField("task_id", id).Warn("не удалось обновить задачу")
		return entity.Task{}, err
	}

	// Запись с сервера заменяет локальную целиком
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.tasks[i] = *updated
	}
	s.mu.Unlock()

	return *updated, nil
}

// MoveStatus - обновление одного статуса (перетаскивание на доске)
func (s *TaskStore) MoveStatus(ctx context.Context, id string, status entity.Status) (entity.Task, error) {
	return s.Update(ctx, id, entity.StatusPatch(status))
}

// Remove удаляет задачу. Ответ "не найдено" считается успешным удалением:
// повторный клик по удалению не должен показывать ошибку.
func (s *TaskStore) Remove(ctx context.Context, id string) error {
	err := s.gateway.Delete(ctx, id)
	if err != nil && !errors.Is(err, entity.ErrTaskNotFound) {
		s.log.WithError(err).WithField("task_id", id).Warn("не удалось удалить задачу")
		return err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()

	return nil
}

// indexOf вызывается под блокировкой
func (s *TaskStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Tasks возвращает копию канонического списка
func (s *TaskStore) Tasks() []entity.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]entity.Task, len(s.tasks))
	copy(tasks, s.tasks)
	return tasks
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *TaskStore) Get(id string) (entity.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return entity.Task{}, false
}

func (s *TaskStore) Filter() entity.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *TaskStore) SetFilter(f entity.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *TaskStore) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

func (s *TaskStore) SetSearchQuery(q string) {
	s.mu.Lock()
	s.searchQuery = q
	s.mu.Unlock()
}

// ResetFilter сбрасывает фильтры и строку поиска
func (s *TaskStore) ResetFilter() {
	s.mu.Lock()
	s.filter = entity.DefaultFilter()
	s.searchQuery = ""
	s.mu.Unlock()
}

// Visible - задачи с учетом текущих фильтров и поиска
func (s *TaskStore) Visible() []entity.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return VisibleTasks(s.tasks, s.filter, s.searchQuery)
}

// Board - видимые задачи по колонкам
func (s *TaskStore) Board() StatusBuckets {
	return ByStatus(s.Visible())
}
