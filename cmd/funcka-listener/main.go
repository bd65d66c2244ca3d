// Funcka Listener — долгоживущий потребитель событий ботов.
//
// Listener:
//   - Читает события из очереди (RabbitMQ или Redis)
//   - Логирует каждое событие
//   - Записывает события в журнал PostgreSQL, если задан DB_HOST
//   - Отдаёт /healthz, /readyz и /metrics
//
// Конфигурация — переменные окружения или файл из FUNCKA_CONFIG.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/funckabots/internal/cli"
	"github.com/shaiso/funckabots/internal/config"
	"github.com/shaiso/funckabots/internal/events"
	"github.com/shaiso/funckabots/internal/handler"
	"github.com/shaiso/funckabots/internal/mq"
	"github.com/shaiso/funckabots/internal/telemetry"
)

func main() {
	// До загрузки конфигурации логгер настраивается из LOG_LEVEL и LOG_FORMAT
	logger := telemetry.SetupLogger()

	cfg, err := config.Load(config.New(), os.Getenv("FUNCKA_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)
	logger.Info("starting funcka-listener", "backend", cfg.Backend, "queue", cfg.Queue)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = telemetry.WithLogger(ctx, logger)

	metrics := telemetry.NewBrokerMetrics(prometheus.DefaultRegisterer)

	client, err := cli.NewClient(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to create broker client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.EnsureLive(ctx); err != nil {
		logger.Error("broker not available", "error", err)
		os.Exit(1)
	}
	logger.Info("broker connected")

	router := handler.NewRouter()
	router.Fallback(handler.HandlerFunc(func(ctx context.Context, ev events.Event) error {
		telemetry.WithEvent(logger, ev).Info("event received", "kinds", ev.Kinds())
		if client.EventLog == nil {
			return nil
		}
		return client.EventLog.Record(ctx, cfg.Queue, ev)
	}))

	runner := handler.NewRunner(handler.Config{
		Source:       client.Source,
		Handler:      router,
		Queue:        cfg.Queue,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	// HTTP mux: /healthz + /readyz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := client.EnsureLive(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		logger.Info("listening", "addr", cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Новый Listen поднимает соединение заново, поэтому после обрыва цикл перезапускается
	var runErr error
	for {
		runErr = runner.Run(ctx)
		if ctx.Err() != nil || !errors.Is(runErr, mq.ErrConnection) {
			break
		}
		logger.Warn("event source lost, restarting", "error", runErr, "delay", cfg.RetryDelay)

		select {
		case <-ctx.Done():
		case <-time.After(cfg.RetryDelay):
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}

	if runErr != nil && ctx.Err() == nil {
		logger.Error("event runner failed", "error", runErr)
		client.Close()
		os.Exit(1)
	}

	logger.Info("funcka-listener stopped")
}
