package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const AuditQueue = "task_audit_logs"

type RabbitMQClient struct {
	log     *slog.Logger
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQClient(url string, log *slog.Logger) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	queue, err := DeclareAuditQueue(channel)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQClient{
		log:     log,
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

// DeclareAuditQueue объявляет durable-очередь аудита; вызывается и издателем, и воркером
func DeclareAuditQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		AuditQueue, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %s: %w", AuditQueue, err)
	}
	return q, nil
}

func (c *RabbitMQClient) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	if message.MessageID == "" {
		message.MessageID = uuid.NewString()
	}
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.PublishWithContext(
		ctx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    message.MessageID,
			Timestamp:    message.Timestamp,
			Body:         body,
			DeliveryMode: amqp.Persistent, // Сообщения сохраняются на диск
		},
	)
	if err != nil {
		return fmt.Errorf("publish audit: %w", err)
	}

	c.log.Debug("audit published", "action", message.Action, "task_id", message.EntityID, "message_id", message.MessageID)
	return nil
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// NoopPublisher используется, когда RabbitMQ не настроен
type NoopPublisher struct {
	Log *slog.Logger
}

func (p NoopPublisher) PublishAuditMessage(_ context.Context, message *entity.AuditMessage) error {
	if p.Log != nil {
		p.Log.Debug("audit skipped, broker disabled", "action", message.Action, "task_id", message.EntityID)
	}
	return nil
}
