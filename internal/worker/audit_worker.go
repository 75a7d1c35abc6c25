package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/St1cky1/task-manager/internal/infrastructure/client"
	"github.com/St1cky1/task-manager/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 5 * time.Second

// AuditWorker читает очередь аудита и сохраняет записи в task_audit
type AuditWorker struct {
	log       *slog.Logger
	url       string
	auditRepo repository.ITaskAuditRepository
}

func NewAuditWorker(log *slog.Logger, url string, auditRepo repository.ITaskAuditRepository) *AuditWorker {
	return &AuditWorker{
		log:       log,
		url:       url,
		auditRepo: auditRepo,
	}
}

// Start блокируется до отмены ctx, переподключаясь при обрыве соединения
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info("audit worker started", "queue", client.AuditQueue)
	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			w.log.Info("audit worker stopped")
			return
		}
		w.log.Warn("audit worker disconnected, reconnecting", "error", err, "delay", reconnectDelay)

		select {
		case <-ctx.Done():
			w.log.Info("audit worker stopped")
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (w *AuditWorker) run(ctx context.Context) error {
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer channel.Close()

	if _, err := client.DeclareAuditQueue(channel); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		client.AuditQueue, // queue
		"audit_worker",    // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	// 1. Парсим сообщение
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(msg.Body, &auditMsg); err != nil {
		w.log.Error("malformed audit message dropped", "error", err)
		_ = msg.Nack(false, false) // Не возвращаем в очередь
		return
	}
	if auditMsg.MessageID == "" {
		auditMsg.MessageID = msg.MessageId
	}

	// 2. Конвертируем в TaskAudit
	taskAudit, err := convertToTaskAudit(&auditMsg)
	if err != nil {
		w.log.Error("audit message conversion failed", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	// 3. Сохраняем в БД, при ошибке возвращаем в очередь
	if err := w.auditRepo.Create(ctx, taskAudit); err != nil {
		w.log.Error("audit save failed, requeue", "task_id", taskAudit.EntityID, "error", err)
		_ = msg.Nack(false, true)
		return
	}

	// 4. Подтверждаем обработку
	_ = msg.Ack(false)
	w.log.Debug("audit saved", "action", taskAudit.Action, "task_id", taskAudit.EntityID)
}

func jsonString(v map[string]any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

func convertToTaskAudit(msg *entity.AuditMessage) (*entity.TaskAudit, error) {
	if msg.EntityID <= 0 || msg.Action == "" {
		return nil, fmt.Errorf("incomplete audit message")
	}

	oldValues, err := jsonString(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := jsonString(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changes, err := jsonString(msg.Changes)
	if err != nil {
		return nil, err
	}

	changedAt := msg.Timestamp
	if changedAt.IsZero() {
		changedAt = time.Now().UTC()
	}

	return &entity.TaskAudit{
		MessageID:  msg.MessageID,
		Action:     msg.Action,
		EntityType: "task",
		EntityID:   msg.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Changes:    changes,
		ChangedAt:  changedAt,
	}, nil
}
