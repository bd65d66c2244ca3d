package redisq

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaiso/funckabots/internal/codec"
	"github.com/shaiso/funckabots/internal/mq"
	"github.com/shaiso/funckabots/internal/telemetry"
)

// DefaultKeyPrefix — префикс ключей списков-очередей.
const DefaultKeyPrefix = "funcka:queue:"

var errEmptyQueueName = errors.New("queue name is empty")

// Config — конфигурация Queue.
type Config struct {
	// KeyPrefix — префикс ключа списка (по умолчанию DefaultKeyPrefix).
	KeyPrefix string

	// Metrics (опционально).
	Metrics *telemetry.BrokerMetrics
}

// Queue публикует и читает объекты через списки Redis.
type Queue struct {
	client  *redis.Client
	logger  *slog.Logger
	metrics *telemetry.BrokerMetrics
	prefix  string
}

// New создаёт Queue поверх готового клиента.
func New(client *redis.Client, logger *slog.Logger, cfg Config) *Queue {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &Queue{
		client:  client,
		logger:  telemetry.OrDefault(logger),
		metrics: cfg.Metrics,
		prefix:  prefix,
	}
}

// EnsureLive проверяет соединение командой PING.
func (q *Queue) EnsureLive(ctx context.Context) error {
	err := q.client.Ping(ctx).Err()
	q.metrics.ConnectAttempt(err == nil)
	if err != nil {
		return &mq.OpError{Op: "connect", Kind: mq.ErrConnection, Err: err}
	}
	return nil
}

// Close закрывает клиент.
func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) key(queue string) string {
	return q.prefix + queue
}

// Publish кодирует obj и кладёт его в конец очереди queue.
//
// Запись подтверждена Redis, поэтому статус всегда mq.StatusAcked.
func (q *Queue) Publish(ctx context.Context, obj any, queue string) (mq.DeliveryStatus, error) {
	if queue == "" {
		return mq.StatusUnconfirmed, &mq.OpError{Op: "publish", Kind: mq.ErrProvision, Err: errEmptyQueueName}
	}

	body, err := codec.Encode(obj)
	if err != nil {
		q.metrics.PublishFailed(queue)
		return mq.StatusUnconfirmed, &mq.OpError{Op: "publish", Queue: queue, Kind: mq.ErrEncode, Err: err}
	}

	if err := q.client.RPush(ctx, q.key(queue), body).Err(); err != nil {
		q.metrics.PublishFailed(queue)
		return mq.StatusUnconfirmed, &mq.OpError{Op: "publish", Queue: queue, Kind: mq.ErrPublish, Err: err}
	}

	q.metrics.Published(queue, mq.StatusAcked.String())
	q.logger.Info("object has been sent to the queue",
		"queue", queue,
		"backend", "redis",
		"object", describe(obj),
	)

	return mq.StatusAcked, nil
}

// Listen возвращает бесконечную ленивую последовательность объектов из очереди.
//
// Семантика та же, что у mq.Subscriber.Listen: элемент удаляется из
// списка при получении, пустой опрос ждёт pollInterval, ошибка
// декодирования выдаётся с nil объектом, ошибка Redis завершает
// последовательность.
func (q *Queue) Listen(ctx context.Context, queue string, pollInterval time.Duration) iter.Seq2[any, error] {
	if pollInterval <= 0 {
		pollInterval = mq.DefaultPollInterval
	}

	return func(yield func(any, error) bool) {
		if queue == "" {
			yield(nil, &mq.OpError{Op: "listen", Kind: mq.ErrProvision, Err: errEmptyQueueName})
			return
		}

		logger := telemetry.WithQueue(q.logger, queue)
		logger.Info("waiting for messages from the queue", "poll_interval", pollInterval, "backend", "redis")

		idle := time.NewTimer(pollInterval)
		defer idle.Stop()

		for {
			if ctx.Err() != nil {
				return
			}

			body, err := q.client.LPop(ctx, q.key(queue)).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
				q.metrics.EmptyPoll(queue)

				idle.Reset(pollInterval)
				select {
				case <-ctx.Done():
					return
				case <-idle.C:
				}
				continue

			case err != nil:
				if ctx.Err() != nil {
					return
				}
				yield(nil, &mq.OpError{Op: "get", Queue: queue, Kind: mq.ErrConnection, Err: err})
				return
			}

			q.metrics.Received(queue)

			obj, err := codec.Decode(body)
			if err != nil {
				q.metrics.DecodeFailed(queue)
				logger.Error("failed to decode message", "error", err)
				if !yield(nil, &mq.OpError{Op: "decode", Queue: queue, Kind: mq.ErrDecode, Err: err}) {
					return
				}
				continue
			}

			logger.Info("received object from the queue", "object", describe(obj))
			if !yield(obj, nil) {
				return
			}
		}
	}
}

// Depth возвращает число сообщений, ожидающих в очереди.
func (q *Queue) Depth(ctx context.Context, queue string) (int64, error) {
	n, err := q.client.LLen(ctx, q.key(queue)).Result()
	if err != nil {
		return 0, &mq.OpError{Op: "depth", Queue: queue, Kind: mq.ErrConnection, Err: err}
	}
	return n, nil
}

func describe(obj any) string {
	if s, ok := obj.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", obj)
}
