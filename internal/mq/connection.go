package mq

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"

	"github.com/shaiso/funckabots/internal/telemetry"
)

// Значения по умолчанию для подключения.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second

	// blockedCloseTimeout — сколько ждать close-ok от брокера,
	// закрывая заблокированное соединение.
	blockedCloseTimeout = 5 * time.Second
)

// ConnectionConfig — конфигурация Connection.
type ConnectionConfig struct {
	// Credentials — параметры подключения.
	Credentials Credentials

	// MaxAttempts — сколько раз пытаться подключиться (default: 3).
	MaxAttempts int

	// RetryDelay — пауза между попытками (default: 1s).
	RetryDelay time.Duration

	// Dialer (опционально; если nil — DefaultDialer).
	Dialer Dialer

	// Metrics (опционально).
	Metrics *telemetry.BrokerMetrics
}

// Connection — единственное логическое соединение клиента с RabbitMQ.
//
// Особенности:
//   - Ленивое подключение: первая операция вызывает EnsureLive
//   - Подключение с ограниченным числом попыток
//   - Перед каждым каналом соединение проверяется и при необходимости
//     заменяется целиком
//   - Закрытие соединения, заблокированного брокером дольше BlockedTimeout
type Connection struct {
	creds       Credentials
	dial        Dialer
	maxAttempts int
	retryDelay  time.Duration

	logger  *slog.Logger
	metrics *telemetry.BrokerMetrics

	mu     sync.Mutex
	conn   Conn
	closed bool
}

// NewConnection создаёт Connection без подключения.
func NewConnection(cfg ConnectionConfig, logger *slog.Logger) *Connection {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	// go-retry не принимает нулевую задержку
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	dial := cfg.Dialer
	if dial == nil {
		dial = DefaultDialer
	}

	return &Connection{
		creds:       cfg.Credentials,
		dial:        dial,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      telemetry.OrDefault(logger),
		metrics:     cfg.Metrics,
	}
}

// Dial создаёт Connection и сразу подключается.
func Dial(ctx context.Context, cfg ConnectionConfig, logger *slog.Logger) (*Connection, error) {
	c := NewConnection(cfg, logger)
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect устанавливает новое соединение, заменяя текущее.
//
// Делает не более MaxAttempts попыток. Если все попытки неудачны,
// соединение остаётся пустым, а ошибка оборачивает ErrConnection.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connectLocked(ctx)
}

func (c *Connection) connectLocked(ctx context.Context) error {
	if c.closed {
		return &OpError{Op: "connect", Kind: ErrConnection, Err: ErrClosed}
	}

	// Замена целиком: старое соединение не чиним
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewConstant(c.retryDelay))

	attempt := 0
	var conn Conn
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		attempt++

		cn, err := c.dial(c.creds.URL(), c.creds.amqpConfig())
		if err != nil {
			c.metrics.ConnectAttempt(false)
			c.logger.Warn("connect attempt failed",
				"attempt", attempt,
				"max_attempts", c.maxAttempts,
				"error", err,
			)
			return retry.RetryableError(err)
		}

		conn = cn
		return nil
	})
	if err != nil {
		c.logger.Error("could not connect to RabbitMQ",
			"fatal", true,
			"host", c.creds.Host,
			"vhost", c.creds.vhost(),
			"attempts", attempt,
			"error", err,
		)
		return &OpError{Op: "connect", Kind: ErrConnection, Err: err}
	}

	c.metrics.ConnectAttempt(true)
	c.conn = conn
	c.watch(conn)

	c.logger.Info("connected to RabbitMQ",
		"host", c.creds.Host,
		"vhost", c.creds.vhost(),
		"attempts", attempt,
	)

	return nil
}

// watch логирует закрытие соединения и закрывает его,
// если брокер держит его заблокированным дольше BlockedTimeout.
func (c *Connection) watch(conn Conn) {
	closeCh := conn.NotifyClose(make(chan *amqp.Error, 1))
	blockedCh := conn.NotifyBlocked(make(chan amqp.Blocking, 1))
	limit := c.creds.BlockedTimeout

	go func() {
		var timer *time.Timer
		var expired <-chan time.Time

		stopTimer := func() {
			if timer != nil {
				timer.Stop()
				timer = nil
			}
			expired = nil
		}
		defer stopTimer()

		for {
			select {
			case err, ok := <-closeCh:
				if ok && err != nil {
					c.logger.Warn("connection closed", "error", err)
				}
				return

			case b, ok := <-blockedCh:
				if !ok {
					blockedCh = nil
					continue
				}
				if !b.Active {
					c.logger.Info("connection unblocked")
					stopTimer()
					continue
				}
				c.logger.Warn("connection blocked by broker", "reason", b.Reason)
				if limit > 0 && timer == nil {
					timer = time.NewTimer(limit)
					expired = timer.C
				}

			case <-expired:
				c.logger.Error("connection blocked too long, closing", "timeout", limit)
				stopTimer()
				// Заблокированный брокер может не ответить на connection.close
				if err := conn.CloseDeadline(time.Now().Add(blockedCloseTimeout)); err != nil {
					c.logger.Warn("close blocked connection", "error", err)
				}
			}
		}
	}()
}

// EnsureLive проверяет, что соединение открыто, и переподключается, если нет.
func (c *Connection) EnsureLive(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ensureLiveLocked(ctx)
}

func (c *Connection) ensureLiveLocked(ctx context.Context) error {
	if c.closed {
		return &OpError{Op: "connect", Kind: ErrConnection, Err: ErrClosed}
	}

	if c.conn != nil && !c.conn.IsClosed() {
		return nil
	}

	if c.conn != nil {
		c.logger.Warn("connection is not open, reconnecting")
	}

	return c.connectLocked(ctx)
}

// Channel проверяет соединение и открывает новый канал.
// Канал принадлежит вызывающему и должен быть закрыт им.
func (c *Connection) Channel(ctx context.Context, confirm bool) (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLiveLocked(ctx); err != nil {
		return nil, err
	}

	ch, err := c.conn.Channel(confirm)
	if err != nil {
		return nil, &OpError{Op: "channel", Kind: ErrConnection, Err: err}
	}

	return ch, nil
}

// IsConnected проверяет, установлено ли соединение.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return false
	}

	return !c.conn.IsClosed()
}

// Close закрывает соединение. Повторный вызов ничего не делает.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.conn == nil {
		return nil
	}

	conn := c.conn
	c.conn = nil

	if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return &OpError{Op: "close", Kind: ErrConnection, Err: err}
	}

	c.logger.Info("connection closed")
	return nil
}
