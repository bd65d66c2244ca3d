package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/funckabots/internal/config"
	"github.com/shaiso/funckabots/internal/handler"
	"github.com/shaiso/funckabots/internal/mq"
	"github.com/shaiso/funckabots/internal/redisq"
	"github.com/shaiso/funckabots/internal/store"
	"github.com/shaiso/funckabots/internal/telemetry"
)

// Publisher публикует объекты в очередь.
//
// Реализации: *mq.Publisher, *redisq.Queue.
type Publisher interface {
	Publish(ctx context.Context, obj any, queue string) (mq.DeliveryStatus, error)
}

// Client — клиент выбранного брокера и, если настроен, журнала событий.
type Client struct {
	Publisher Publisher
	Source    handler.Source

	// EventLog — nil, если PostgreSQL не настроен.
	EventLog *store.EventLog

	// liveness проверяет доступность брокера.
	liveness func(ctx context.Context) error
	closers  []func() error
}

// NewClient создаёт клиента для cfg.Backend.
//
// Соединение с RabbitMQ ленивое, с Redis устанавливается при первой
// команде. С PostgreSQL соединение устанавливается сразу, если задан
// DB_HOST.
func NewClient(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *telemetry.BrokerMetrics) (*Client, error) {
	logger = telemetry.OrDefault(logger)
	c := &Client{}

	switch cfg.Backend {
	case config.BackendAMQP:
		conn := mq.NewConnection(mq.ConnectionConfig{
			Credentials: cfg.RabbitMQ,
			MaxAttempts: cfg.ConnectAttempts,
			RetryDelay:  cfg.RetryDelay,
			Metrics:     metrics,
		}, logger)

		c.Publisher = mq.NewPublisher(conn, logger, mq.PublisherConfig{Metrics: metrics})
		c.Source = mq.NewSubscriber(conn, logger, mq.SubscriberConfig{Metrics: metrics})
		c.liveness = conn.EnsureLive
		c.closers = append(c.closers, conn.Close)

	case config.BackendRedis:
		q := redisq.New(redisq.NewClient(cfg.Redis), logger, redisq.Config{Metrics: metrics})

		c.Publisher = q
		c.Source = q
		c.liveness = q.EnsureLive
		c.closers = append(c.closers, q.Close)

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, cfg.Backend)
	}

	if cfg.PostgresEnabled() {
		pool, err := store.NewPool(ctx, cfg.Postgres)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		c.closers = append(c.closers, func() error {
			pool.Close()
			return nil
		})

		c.EventLog = store.NewEventLog(pool)
		if err := c.EventLog.EnsureSchema(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}

	return c, nil
}

// EnsureLive проверяет доступность брокера.
func (c *Client) EnsureLive(ctx context.Context) error {
	if c.liveness == nil {
		return nil
	}
	return c.liveness(ctx)
}

// Close закрывает все ресурсы клиента в обратном порядке.
func (c *Client) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
