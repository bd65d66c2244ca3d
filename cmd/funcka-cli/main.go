// Funcka CLI — публикация и чтение объектов и событий ботов.
//
// Использование:
//
//	funcka [--config FILE] [--backend amqp|redis] [--queue Q] [--json] <command> [flags]
//
// Команды:
//
//	publish   Публикация JSON-объекта
//	event     Сборка события из JSON-файла и публикация
//	listen    Чтение объектов из очереди
//	history   Последние события из журнала (PostgreSQL)
//
// Параметры подключения берутся из окружения (RABBITMQ_HOST, REDIS_HOST,
// DB_HOST, ...) или файла конфигурации.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/funckabots/internal/cli"
	"github.com/shaiso/funckabots/internal/config"
	"github.com/shaiso/funckabots/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var configFile string
	var jsonOutput bool

	v := config.NewCLI()

	rootCmd := &cobra.Command{
		Use:           "funcka",
		Short:         "Funcka CLI — publish and inspect bot queues",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (yaml, json, toml)")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.String("backend", config.BackendAMQP, "Broker backend: amqp or redis")
	flags.String("queue", "events", "Queue name")
	flags.Duration("poll-interval", 200*time.Millisecond, "Pause between empty polls")
	flags.String("log-level", "WARN", "Log level: DEBUG, INFO, WARN, ERROR")

	v.BindPFlag("backend", flags.Lookup("backend"))
	v.BindPFlag("queue", flags.Lookup("queue"))
	v.BindPFlag("poll.interval", flags.Lookup("poll-interval"))
	v.BindPFlag("log.level", flags.Lookup("log-level"))

	var cfg config.Config
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v, configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	}

	clientFn := func(ctx context.Context) (*cli.Client, error) {
		// Логи клиента идут в stderr, чтобы не смешиваться с выводом команд
		logger := telemetry.NewLogger(cfg.LogLevel, "text", os.Stderr)
		return cli.NewClient(ctx, cfg, logger, nil)
	}
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }
	queueFn := func() string { return cfg.Queue }
	pollFn := func() time.Duration { return cfg.PollInterval }

	rootCmd.AddCommand(
		cli.NewPublishCmd(clientFn, outputFn, queueFn),
		cli.NewEventCmd(clientFn, outputFn, queueFn),
		cli.NewListenCmd(clientFn, outputFn, queueFn, pollFn),
		cli.NewHistoryCmd(clientFn, outputFn),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cli.NewOutput(jsonOutput).Error(err.Error())
		os.Exit(1)
	}
}
