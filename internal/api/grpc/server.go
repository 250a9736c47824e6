package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// TasksService - имя сервиса, под которым публикуется готовность API задач
const TasksService = "taskboard.v1.Tasks"

// ReadinessCheck проверяет зависимости (база, кеш). nil - готов.
type ReadinessCheck func(ctx context.Context) error

type GRPCServer struct {
	health   *health.Server
	server   *grpc.Server
	check    ReadinessCheck
	interval time.Duration
	log      logrus.FieldLogger
}

func NewGRPCServer(check ReadinessCheck, interval time.Duration, log logrus.FieldLogger) *GRPCServer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	s := &GRPCServer{
		health:   health.NewServer(),
		check:    check,
		interval: interval,
		log:      log,
	}

	s.server = grpc.NewServer(
		grpc.UnaryInterceptor(s.unaryInterceptor),
	)
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)

	s.health.SetServingStatus(TasksService, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Start блокируется до Stop
func (s *GRPCServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	s.log.WithField("addr", lis.Addr().String()).Info("gRPC сервер запущен")
	return s.server.Serve(lis)
}

// Refresh обновляет статус по результату проверки
func (s *GRPCServer) Refresh(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if s.check != nil {
		if err := s.check(ctx); err != nil {
			s.log.WithError(err).Warn("проверка готовности не прошла")
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(TasksService, st)
}

// Watch периодически вызывает Refresh, пока не отменен ctx
func (s *GRPCServer) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *GRPCServer) unaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	entry := s.log.WithFields(logrus.Fields{
		"method":      info.FullMethod,
		"code":        status.Code(err).String(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("gRPC запрос завершился ошибкой")
	} else {
		entry.Debug("gRPC запрос")
	}
	return resp, err
}
