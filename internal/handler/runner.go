package handler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/shaiso/funckabots/internal/events"
	"github.com/shaiso/funckabots/internal/mq"
	"github.com/shaiso/funckabots/internal/telemetry"
)

// Source — источник объектов из очереди.
//
// Реализации: *mq.Subscriber, *redisq.Queue.
type Source interface {
	Listen(ctx context.Context, queue string, pollInterval time.Duration) iter.Seq2[any, error]
}

// Config — конфигурация Runner.
type Config struct {
	Source  Source
	Handler Handler

	// Queue — имя очереди, из которой читаются события.
	Queue string

	// PollInterval — пауза между пустыми опросами (default: mq.DefaultPollInterval).
	PollInterval time.Duration

	// Logger
	Logger *slog.Logger
}

// Runner читает события из очереди и передаёт их обработчику.
type Runner struct {
	source       Source
	handler      Handler
	queue        string
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewRunner создаёт новый Runner.
func NewRunner(cfg Config) *Runner {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = mq.DefaultPollInterval
	}

	return &Runner{
		source:       cfg.Source,
		handler:      cfg.Handler,
		queue:        cfg.Queue,
		pollInterval: pollInterval,
		logger:       telemetry.WithQueue(telemetry.OrDefault(cfg.Logger), cfg.Queue),
	}
}

// Run читает очередь, пока не отменён ctx или Source не вернёт ошибку.
//
// Возвращает ctx.Err() при отмене и ошибку Source, если чтение
// прервалось. Ошибки декодирования и ошибки обработчиков только
// логируются.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("starting event runner", "poll_interval", r.pollInterval)

	for obj, err := range r.source.Listen(ctx, r.queue, r.pollInterval) {
		if err != nil {
			if errors.Is(err, mq.ErrDecode) {
				r.logger.Warn("skipping undecodable message", "error", err)
				continue
			}
			r.logger.Error("event source failed", "error", err)
			return err
		}

		ev, ok := obj.(events.Event)
		if !ok {
			r.logger.Warn("skipping non-event object", "type", fmt.Sprintf("%T", obj))
			continue
		}

		r.dispatch(ctx, ev)
	}

	if err := ctx.Err(); err != nil {
		r.logger.Info("event runner stopped")
		return err
	}
	return nil
}

// dispatch проверяет событие, вызывает обработчик и освобождает событие.
func (r *Runner) dispatch(ctx context.Context, ev events.Event) {
	logger := telemetry.WithEvent(r.logger, ev)
	defer ev.Dispose()

	if err := events.Validate(ev); err != nil {
		logger.Warn("skipping invalid event", "error", fmt.Errorf("%w: %w", ErrInvalidEvent, err))
		return
	}

	start := time.Now()
	if err := r.handle(ctx, ev); err != nil {
		logger.Error("event handler failed", "error", err, "duration", time.Since(start))
		return
	}

	logger.Debug("event handled", "duration", time.Since(start))
}

// handle вызывает обработчик, превращая панику в ошибку.
func (r *Runner) handle(ctx context.Context, ev events.Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, p)
			r.logger.Debug("handler panic stack", "stack", string(debug.Stack()))
		}
	}()

	return r.handler.Handle(ctx, ev)
}
