package mq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/funckabots/internal/codec"
	"github.com/shaiso/funckabots/internal/telemetry"
)

// PublisherConfig — конфигурация Publisher.
type PublisherConfig struct {
	// NoConfirm отключает publisher confirms; Publish тогда
	// возвращает StatusUnconfirmed.
	NoConfirm bool

	// Metrics (опционально).
	Metrics *telemetry.BrokerMetrics
}

// Publisher публикует объекты в очереди RabbitMQ.
type Publisher struct {
	conn      *Connection
	logger    *slog.Logger
	metrics   *telemetry.BrokerMetrics
	noConfirm bool
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	return &Publisher{
		conn:      conn,
		logger:    telemetry.OrDefault(logger),
		metrics:   cfg.Metrics,
		noConfirm: cfg.NoConfirm,
	}
}

// Publish кодирует obj и публикует его в очередь queue.
//
// Очередь объявляется при каждом вызове (идемпотентно), канал
// закрывается после публикации. Сама публикация не повторяется:
// повторяется только подключение.
func (p *Publisher) Publish(ctx context.Context, obj any, queue string) (DeliveryStatus, error) {
	body, err := codec.Encode(obj)
	if err != nil {
		p.metrics.PublishFailed(queue)
		return StatusUnconfirmed, &OpError{Op: "publish", Queue: queue, Kind: ErrEncode, Err: err}
	}

	ch, err := p.conn.Channel(ctx, !p.noConfirm)
	if err != nil {
		p.metrics.PublishFailed(queue)
		return StatusUnconfirmed, withQueue(err, queue)
	}
	defer func() {
		if err := ch.Close(); err != nil {
			p.logger.Debug("close channel", "queue", queue, "error", err)
		}
	}()

	if err := EnsureQueue(ch, queue); err != nil {
		p.metrics.PublishFailed(queue)
		return StatusUnconfirmed, err
	}

	msgID := uuid.New().String()
	status, err := ch.Publish(ctx, queue, amqp.Publishing{
		ContentType:  codec.ContentType,
		DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
		MessageId:    msgID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.metrics.PublishFailed(queue)
		return StatusUnconfirmed, &OpError{Op: "publish", Queue: queue, Kind: ErrPublish, Err: err}
	}

	if status == StatusNacked {
		p.metrics.PublishFailed(queue)
		return status, &OpError{Op: "publish", Queue: queue, Kind: ErrPublish, Err: errNacked}
	}

	p.metrics.Published(queue, status.String())
	p.logger.Info("object has been sent to the queue",
		"queue", queue,
		"message_id", msgID,
		"object", describe(obj),
		"status", status,
	)

	return status, nil
}

// describe возвращает описание объекта для логов.
func describe(obj any) string {
	if s, ok := obj.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", obj)
}
