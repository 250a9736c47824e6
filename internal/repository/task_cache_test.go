package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubTaskRepository struct {
	createFn func(ctx context.Context, task *entity.Task) (*entity.Task, error)
	getFn    func(ctx context.Context, id string) (*entity.Task, error)
	updateFn func(ctx context.Context, id string, patch *entity.TaskPatch) (*entity.Task, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, ownerID, status string) ([]entity.Task, error)
}

func (s *stubTaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	if s.createFn == nil {
		return nil, errors.New("unexpected Create call")
	}
	return s.createFn(ctx, task)
}

func (s *stubTaskRepository) GetByTaskId(ctx context.Context, id string) (*entity.Task, error) {
	if s.getFn == nil {
		return nil, errors.New("unexpected GetByTaskId call")
	}
	return s.getFn(ctx, id)
}

func (s *stubTaskRepository) Update(ctx context.Context, id string, patch *entity.TaskPatch) (*entity.Task, error) {
	if s.updateFn == nil {
		return nil, errors.New("unexpected Update call")
	}
	return s.updateFn(ctx, id, patch)
}

func (s *stubTaskRepository) Delete(ctx context.Context, id string) error {
	if s.deleteFn == nil {
		return errors.New("unexpected Delete call")
	}
	return s.deleteFn(ctx, id)
}

func (s *stubTaskRepository) List(ctx context.Context, ownerID, status string) ([]entity.Task, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.listFn(ctx, ownerID, status)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedTaskRepository_ListMissThenHit(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	var calls int
	base := &stubTaskRepository{
		listFn: func(ctx context.Context, ownerID, status string) ([]entity.Task, error) {
			calls++
			if ownerID != "user-1" {
				t.Fatalf("unexpected owner: %s", ownerID)
			}
			return []entity.Task{{ID: "t1", Title: "Write code", Status: entity.StatusTodo, Priority: entity.PriorityHigh}}, nil
		},
	}
	repo := NewCachedTaskRepository(base, client, time.Minute)

	for i := 0; i < 2; i++ {
		tasks, err := repo.List(ctx, "user-1", "")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != "t1" || tasks[0].Priority != entity.PriorityHigh {
			t.Fatalf("unexpected tasks: %#v", tasks)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to backend, got %d", calls)
	}
	if ttl := mr.TTL(tasksCacheKey("user-1")); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
}

func TestCachedTaskRepository_StatusFilterCachedSeparately(t *testing.T) {
	_, client := newMiniredis(t)
	ctx := context.Background()

	seen := map[string]int{}
	base := &stubTaskRepository{
		listFn: func(ctx context.Context, ownerID, status string) ([]entity.Task, error) {
			seen[status]++
			return []entity.Task{{ID: "t-" + status}}, nil
		},
	}
	repo := NewCachedTaskRepository(base, client, time.Minute)

	all, _ := repo.List(ctx, "user-1", "")
	done, _ := repo.List(ctx, "user-1", "done")
	_, _ = repo.List(ctx, "user-1", "done")

	if all[0].ID != "t-" || done[0].ID != "t-done" {
		t.Fatalf("filters mixed up: %v %v", all, done)
	}
	if seen[""] != 1 || seen["done"] != 1 {
		t.Fatalf("unexpected backend calls: %v", seen)
	}
}

func TestCachedTaskRepository_MutationsEvict(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	stored := &entity.Task{ID: "t1", OwnerID: "user-1", Title: "A"}
	base := &stubTaskRepository{
		listFn: func(ctx context.Context, ownerID, status string) ([]entity.Task, error) {
			return []entity.Task{*stored}, nil
		},
		createFn: func(ctx context.Context, task *entity.Task) (*entity.Task, error) {
			return task, nil
		},
		updateFn: func(ctx context.Context, id string, patch *entity.TaskPatch) (*entity.Task, error) {
			return stored, nil
		},
		getFn: func(ctx context.Context, id string) (*entity.Task, error) {
			return stored, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			return nil
		},
	}
	repo := NewCachedTaskRepository(base, client, time.Minute)
	key := tasksCacheKey("user-1")

	mutations := map[string]func() error{
		"create": func() error {
			_, err := repo.Create(ctx, &entity.Task{ID: "t2", OwnerID: "user-1"})
			return err
		},
		"update": func() error {
			title := "B"
			_, err := repo.Update(ctx, "t1", &entity.TaskPatch{Title: &title})
			return err
		},
		"delete": func() error {
			return repo.Delete(ctx, "t1")
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			if _, err := repo.List(ctx, "user-1", ""); err != nil {
				t.Fatalf("list: %v", err)
			}
			if !mr.Exists(key) {
				t.Fatalf("expected cache key after list")
			}
			if err := mutate(); err != nil {
				t.Fatalf("mutate: %v", err)
			}
			if mr.Exists(key) {
				t.Fatalf("expected cache key to be evicted after %s", name)
			}
		})
	}
}

func TestCachedTaskRepository_FailedMutationKeepsCache(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	base := &stubTaskRepository{
		listFn: func(ctx context.Context, ownerID, status string) ([]entity.Task, error) {
			return []entity.Task{{ID: "t1"}}, nil
		},
		createFn: func(ctx context.Context, task *entity.Task) (*entity.Task, error) {
			return nil, errors.New("db down")
		},
	}
	repo := NewCachedTaskRepository(base, client, time.Minute)

	if _, err := repo.List(ctx, "user-1", ""); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := repo.Create(ctx, &entity.Task{ID: "t2", OwnerID: "user-1"}); err == nil {
		t.Fatalf("expected create error")
	}
	if !mr.Exists(tasksCacheKey("user-1")) {
		t.Fatalf("cache should survive a failed mutation")
	}
}

func TestCachedTaskRepository_CorruptEntryFallsBack(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	mr.HSet(tasksCacheKey("user-1"), entity.FilterAll, "{not json")

	var calls int
	base := &stubTaskRepository{
		listFn: func(ctx context.Context, ownerID, status string) ([]entity.Task, error) {
			calls++
			return []entity.Task{{ID: "fresh"}}, nil
		},
	}
	repo := NewCachedTaskRepository(base, client, time.Minute)

	tasks, err := repo.List(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if calls != 1 || len(tasks) != 1 || tasks[0].ID != "fresh" {
		t.Fatalf("expected fallback to backend, got %v after %d calls", tasks, calls)
	}
}

func TestCachedTaskRepository_NoRedis(t *testing.T) {
	var calls int
	base := &stubTaskRepository{
		listFn: func(ctx context.Context, ownerID, status string) ([]entity.Task, error) {
			calls++
			return []entity.Task{}, nil
		},
	}
	repo := NewCachedTaskRepository(base, nil, time.Minute)

	_, _ = repo.List(context.Background(), "user-1", "")
	_, _ = repo.List(context.Background(), "user-1", "")
	if calls != 2 {
		t.Fatalf("expected every call to hit backend without redis, got %d", calls)
	}
}
