package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/infrastructure/client"
	"github.com/St1cky1/taskboard/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AuditWorker читает сообщения аудита из RabbitMQ и пишет их в журнал
type AuditWorker struct {
	url        string
	queueName  string
	auditRepo  repository.ITaskAuditRepository
	log        logrus.FieldLogger
	retryDelay time.Duration
}

func NewAuditWorker(url, queueName string, auditRepo repository.ITaskAuditRepository, log logrus.FieldLogger) *AuditWorker {
	if queueName == "" {
		queueName = client.DefaultAuditQueue
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuditWorker{
		url:        url,
		queueName:  queueName,
		auditRepo:  auditRepo,
		log:        log.WithField("component", "audit_worker"),
		retryDelay: 5 * time.Second,
	}
}

// Start работает до отмены ctx, переподключаясь при обрыве
func (w *AuditWorker) Start(ctx context.Context) {
	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			w.log.Info("audit worker остановлен")
			return
		}
		w.log.WithError(err).WithField("retry_in", w.retryDelay).Warn("audit worker: переподключение")

		select {
		case <-ctx.Done():
			w.log.Info("audit worker остановлен")
			return
		case <-time.After(w.retryDelay):
		}
	}
}

func (w *AuditWorker) run(ctx context.Context) error {
	// Отдельное соединение и канал для consumer'а
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer channel.Close()

	// Убеждаемся, что очередь существует
	if _, err := client.DeclareAuditQueue(channel, w.queueName); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	msgs, err := channel.Consume(
		w.queueName,    // queue
		"audit_worker", // consumer tag
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	w.log.WithField("queue", w.queueName).Info("audit worker запущен, ожидаем сообщения")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	// 1. Парсим сообщение
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(msg.Body, &auditMsg); err != nil {
		w.log.WithError(err).Error("ошибка парсинга сообщения аудита")
		_ = msg.Nack(false, false) // битое сообщение не возвращаем в очередь
		return
	}

	// 2. Конвертируем в TaskAudit
	taskAudit, err := convertToTaskAudit(&auditMsg)
	if err != nil {
		w.log.WithError(err).Error("ошибка конвертации аудита")
		_ = msg.Nack(false, false)
		return
	}

	// 3. Сохраняем в БД
	if err := w.auditRepo.Create(ctx, taskAudit); err != nil {
		w.log.WithError(err).Error("ошибка сохранения аудита")
		_ = msg.Nack(false, true) // вернем в очередь для повторной обработки
		return
	}

	// 4. Подтверждаем обработку
	_ = msg.Ack(false)
	w.log.WithFields(logrus.Fields{
		"action":  taskAudit.Action,
		"task_id": taskAudit.EntityID,
	}).Debug("аудит сохранен")
}

func convertToTaskAudit(msg *entity.AuditMessage) (*entity.TaskAudit, error) {
	if msg.EntityID == "" {
		return nil, fmt.Errorf("audit message without entity_id")
	}

	oldValues, err := marshalValues(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := marshalValues(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changes, err := marshalValues(msg.Changes)
	if err != nil {
		return nil, err
	}

	changedAt := msg.Timestamp
	if changedAt.IsZero() {
		changedAt = time.Now().UTC()
	}

	return &entity.TaskAudit{
		UserID:     msg.UserID,
		Action:     msg.Action,
		EntityType: "task",
		EntityID:   msg.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Changes:    changes,
		ChangesAt:  changedAt,
	}, nil
}

// marshalValues превращает map в JSON строку, nil остается nil
func marshalValues(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}
