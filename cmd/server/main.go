package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/taskboard/internal/api"
	grpcapi "github.com/St1cky1/taskboard/internal/api/grpc"
	"github.com/St1cky1/taskboard/internal/config"
	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	"github.com/St1cky1/taskboard/internal/infrastructure/client"
	"github.com/St1cky1/taskboard/internal/repository"
	"github.com/St1cky1/taskboard/internal/usecase"
	"github.com/St1cky1/taskboard/internal/worker"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		logrus.WithError(err).Fatal("ошибка конфигурации")
	}
	log := config.NewLogger(cfg.LogLevel)
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("сервер остановлен с ошибкой")
		os.Exit(1)
	}
	log.Info("приложение завершено корректно")
}

// storage - выбранное хранилище и проверка его готовности
type storage struct {
	tasks repository.ITaskRepository
	audit repository.ITaskAuditRepository
	ready grpcapi.ReadinessCheck
	close func()
}

func openStorage(ctx context.Context, cfg *config.ServerConfig, log logrus.FieldLogger) (*storage, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := client.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		tasks, err := repository.NewSQLiteTaskRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		audit, err := repository.NewSQLiteTaskAuditRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("подключение к SQLite установлено")
		return &storage{
			tasks: tasks,
			audit: audit,
			ready: db.PingContext,
			close: func() { db.Close() },
		}, nil

	default:
		// Запускаем миграции
		if err := runMigrations(cfg.MigrationsPath, cfg.Postgres.URL()); err != nil {
			return nil, err
		}
		log.Info("миграции выполнены успешно")

		pg, err := client.NewPostgresClient(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		log.Info("подключение к БД установлено")
		return &storage{
			tasks: repository.NewTaskRepository(pg.Pool),
			audit: repository.NewTaskAuditRepository(pg.Pool),
			ready: pg.HealthCheck,
			close: pg.Close,
		}, nil
	}
}

func run(ctx context.Context, cfg *config.ServerConfig, log *logrus.Logger) error {
	var wg sync.WaitGroup

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer store.close()

	taskRepo := store.tasks
	ready := store.ready

	// Кеш списков задач в Redis, если задан REDIS_URL
	if cfg.RedisURL != "" {
		rc, err := client.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rc.Close()
		taskRepo = repository.NewCachedTaskRepository(taskRepo, rc, cfg.TasksCacheTTL)
		dbReady := ready
		ready = func(ctx context.Context) error {
			if err := dbReady(ctx); err != nil {
				return err
			}
			return rc.Ping(ctx).Err()
		}
		log.WithField("ttl", cfg.TasksCacheTTL).Info("кеш задач в Redis включен")
	}

	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()

	// Аудит через RabbitMQ, если задан RABBITMQ_HOST
	var publisher usecase.AuditPublisher
	if cfg.AuditEnabled() {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQURL(), cfg.AuditQueue, log)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer rabbitMQ.Close()
		publisher = rabbitMQ
		log.WithField("queue", rabbitMQ.GetQueueName()).Info("подключение к RabbitMQ установлено")

		auditWorker := worker.NewAuditWorker(cfg.RabbitMQURL(), cfg.AuditQueue, store.audit, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditWorker.Start(workerCtx)
		}()
	} else {
		publisher = worker.NewLocalPublisher(store.audit)
		log.Warn("RABBITMQ_HOST не задан, аудит пишется в БД напрямую")
	}

	taskService := usecase.NewTaskService(taskRepo, store.audit, publisher, log)
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY не задан, используется ключ для разработки")
	}
	jwt := auth.NewJWTManager(cfg.JWTSecretKey, cfg.JWTAccessTTL)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(taskService, jwt, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpcapi.NewGRPCServer(ready, 10*time.Second, log)

	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		grpcServer.Watch(workerCtx)
	}()

	go func() {
		if err := grpcServer.Start(cfg.GRPCAddr); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP сервер запущен")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("получен сигнал завершения")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("ошибка остановки HTTP сервера")
	}
	grpcServer.Stop()

	// Останавливаем воркер и проверку готовности
	workerCancel()
	wg.Wait()

	return runErr
}

func runMigrations(source, dbURL string) error {
	m, err := migrate.New(source, dbURL)
	if err != nil {
		return fmt.Errorf("ошибка создания мигратора: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}
	return nil
}
