package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/redis/go-redis/v9"
)

// CachedTaskRepository кеширует списки задач владельца в Redis.
// Все списки владельца лежат в одном хеше tasks:<owner>, поле - фильтр статуса,
// поэтому любая мутация сбрасывает их одним DEL.
type CachedTaskRepository struct {
	base  ITaskRepository
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedTaskRepository(base ITaskRepository, client *redis.Client, ttl time.Duration) *CachedTaskRepository {
	if base == nil {
		panic("repository.NewCachedTaskRepository: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedTaskRepository{
		base:  base,
		redis: client,
		ttl:   ttl,
	}
}

func (c *CachedTaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	created, err := c.base.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, created.OwnerID)
	return created, nil
}

func (c *CachedTaskRepository) GetByTaskId(ctx context.Context, taskId string) (*entity.Task, error) {
	return c.base.GetByTaskId(ctx, taskId)
}

func (c *CachedTaskRepository) Update(ctx context.Context, id string, patch *entity.TaskPatch) (*entity.Task, error) {
	updated, err := c.base.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		c.evict(ctx, updated.OwnerID)
	}
	return updated, nil
}

func (c *CachedTaskRepository) Delete(ctx context.Context, id string) error {
	// Владельца нужно узнать до удаления, иначе не найти ключ кеша
	existing, err := c.base.GetByTaskId(ctx, id)
	if err != nil {
		return err
	}
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	if existing != nil {
		c.evict(ctx, existing.OwnerID)
	}
	return nil
}

func (c *CachedTaskRepository) List(ctx context.Context, ownerID string, status string) ([]entity.Task, error) {
	if tasks, ok := c.loadFromCache(ctx, ownerID, status); ok {
		return tasks, nil
	}

	tasks, err := c.base.List(ctx, ownerID, status)
	if err != nil {
		return nil, err
	}

	c.store(ctx, ownerID, status, tasks)
	return tasks, nil
}

func (c *CachedTaskRepository) loadFromCache(ctx context.Context, ownerID, status string) ([]entity.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	key := tasksCacheKey(ownerID)
	data, err := c.redis.HGet(ctx, key, statusField(status)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// При ошибках Redis идем в базу и не падаем
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	var tasks []entity.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return tasks, true
}

func (c *CachedTaskRepository) store(ctx context.Context, ownerID, status string, tasks []entity.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	key := tasksCacheKey(ownerID)
	pipe := c.redis.TxPipeline()
	pipe.HSet(ctx, key, statusField(status), data)
	pipe.Expire(ctx, key, c.ttl)
	_, _ = pipe.Exec(ctx)
}

func (c *CachedTaskRepository) evict(ctx context.Context, ownerID string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, tasksCacheKey(ownerID)).Result()
}

func tasksCacheKey(ownerID string) string {
	return "tasks:" + ownerID
}

func statusField(status string) string {
	if status == "" {
		return entity.FilterAll
	}
	return status
}
