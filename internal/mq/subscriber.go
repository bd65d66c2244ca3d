package mq

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/shaiso/funckabots/internal/codec"
	"github.com/shaiso/funckabots/internal/telemetry"
)

// DefaultPollInterval — пауза между пустыми опросами очереди.
const DefaultPollInterval = 200 * time.Millisecond

// SubscriberConfig — конфигурация Subscriber.
type SubscriberConfig struct {
	// Metrics (опционально).
	Metrics *telemetry.BrokerMetrics
}

// Subscriber читает объекты из очередей RabbitMQ опросом (basic.get).
type Subscriber struct {
	conn    *Connection
	logger  *slog.Logger
	metrics *telemetry.BrokerMetrics
}

// NewSubscriber создаёт новый Subscriber.
func NewSubscriber(conn *Connection, logger *slog.Logger, cfg SubscriberConfig) *Subscriber {
	return &Subscriber{
		conn:    conn,
		logger:  telemetry.OrDefault(logger),
		metrics: cfg.Metrics,
	}
}

// Listen возвращает бесконечную ленивую последовательность объектов из очереди.
//
// Канал открывается при первом чтении и держится до конца итерации.
// Сообщения подтверждаются при получении (auto-ack): упавший после
// получения потребитель сообщение теряет. Пока очередь пуста, цикл
// ждёт pollInterval. Ошибка декодирования выдаётся вместе с nil
// объектом, и цикл продолжается, если вызывающий продолжает чтение.
// Ошибки подключения, объявления очереди и basic.get завершают
// последовательность.
//
// Остановка — прекращение итерации или отмена ctx.
func (s *Subscriber) Listen(ctx context.Context, queue string, pollInterval time.Duration) iter.Seq2[any, error] {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return func(yield func(any, error) bool) {
		logger := telemetry.WithQueue(s.logger, queue)

		ch, err := s.conn.Channel(ctx, false)
		if err != nil {
			yield(nil, withQueue(err, queue))
			return
		}
		defer func() {
			if err := ch.Close(); err != nil {
				logger.Debug("close channel", "error", err)
			}
		}()

		if err := EnsureQueue(ch, queue); err != nil {
			yield(nil, err)
			return
		}

		logger.Info("waiting for messages from the queue", "poll_interval", pollInterval)

		idle := time.NewTimer(pollInterval)
		defer idle.Stop()

		for {
			if ctx.Err() != nil {
				return
			}

			msg, ok, err := ch.Get(queue, true)
			if err != nil {
				yield(nil, &OpError{Op: "get", Queue: queue, Kind: ErrConnection, Err: err})
				return
			}

			if ok {
				s.metrics.Received(queue)

				obj, err := codec.Decode(msg.Body)
				if err != nil {
					s.metrics.DecodeFailed(queue)
					logger.Error("failed to decode message",
						"message_id", msg.MessageId,
						"error", err,
					)
					if !yield(nil, &OpError{Op: "decode", Queue: queue, Kind: ErrDecode, Err: err}) {
						return
					}
					continue
				}

				logger.Info("received object from the queue",
					"message_id", msg.MessageId,
					"object", describe(obj),
				)
				if !yield(obj, nil) {
					return
				}
				continue
			}

			s.metrics.EmptyPoll(queue)

			idle.Reset(pollInterval)
			select {
			case <-ctx.Done():
				return
			case <-idle.C:
			}
		}
	}
}
