package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shaiso/funckabots/internal/mq"
	"github.com/shaiso/funckabots/internal/redisq"
	"github.com/shaiso/funckabots/internal/store"
)

// Брокеры, которые поддерживает клиент.
const (
	BackendAMQP  = "amqp"
	BackendRedis = "redis"
)

// Config — конфигурация бинарей.
type Config struct {
	Backend string

	RabbitMQ        mq.Credentials
	ConnectAttempts int
	RetryDelay      time.Duration

	Redis redisq.Credentials

	// Postgres используется, только если задан DB_HOST.
	Postgres store.Credentials

	Queue        string
	PollInterval time.Duration

	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// PostgresEnabled сообщает, настроено ли подключение к PostgreSQL.
func (c Config) PostgresEnabled() bool {
	return c.Postgres.Host != ""
}

// New создаёт viper с переменными окружения и значениями по умолчанию.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// NewCLI создаёт viper для CLI: логи клиента по умолчанию только WARN и выше,
// чтобы не смешиваться с выводом команд.
func NewCLI() *viper.Viper {
	v := New()
	v.SetDefault("log.level", "WARN")
	return v
}

// SetDefaults задаёт значения по умолчанию.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendAMQP)

	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", mq.DefaultPort)
	v.SetDefault("rabbitmq.vhost", mq.DefaultVHost)
	v.SetDefault("rabbitmq.user", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("rabbitmq.heartbeat", mq.DefaultHeartbeat)
	v.SetDefault("rabbitmq.blocked_timeout", mq.DefaultBlockedTimeout)
	v.SetDefault("rabbitmq.connect_attempts", mq.DefaultMaxAttempts)
	v.SetDefault("rabbitmq.retry_delay", mq.DefaultRetryDelay)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", redisq.DefaultPort)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("db.host", "")
	v.SetDefault("db.port", store.DefaultPort)
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("queue", "events")
	v.SetDefault("poll.interval", mq.DefaultPollInterval)

	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.addr", ":8090")
}

// Load читает конфигурацию из v. Если file не пуст, сначала читается файл.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		Backend: strings.ToLower(v.GetString("backend")),
		RabbitMQ: mq.Credentials{
			Host:           v.GetString("rabbitmq.host"),
			Port:           v.GetInt("rabbitmq.port"),
			VHost:          v.GetString("rabbitmq.vhost"),
			User:           v.GetString("rabbitmq.user"),
			Password:       v.GetString("rabbitmq.password"),
			Heartbeat:      v.GetDuration("rabbitmq.heartbeat"),
			BlockedTimeout: v.GetDuration("rabbitmq.blocked_timeout"),
		},
		ConnectAttempts: v.GetInt("rabbitmq.connect_attempts"),
		RetryDelay:      v.GetDuration("rabbitmq.retry_delay"),
		Redis: redisq.Credentials{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Postgres: store.Credentials{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Database: v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		Queue:        v.GetString("queue"),
		PollInterval: v.GetDuration("poll.interval"),
		LogLevel:     v.GetString("log.level"),
		LogFormat:    v.GetString("log.format"),
		MetricsAddr:  v.GetString("metrics.addr"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет конфигурацию и возвращает все найденные ошибки.
func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendAMQP:
		if c.RabbitMQ.Host == "" {
			errs = append(errs, errors.New("rabbitmq.host is empty"))
		}
		if !validPort(c.RabbitMQ.Port) {
			errs = append(errs, fmt.Errorf("rabbitmq.port %d out of range", c.RabbitMQ.Port))
		}
		if c.ConnectAttempts < 1 {
			errs = append(errs, fmt.Errorf("rabbitmq.connect_attempts must be >= 1, got %d", c.ConnectAttempts))
		}
		if c.RetryDelay <= 0 {
			errs = append(errs, fmt.Errorf("rabbitmq.retry_delay must be positive, got %s", c.RetryDelay))
		}
	case BackendRedis:
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("redis.host is empty"))
		}
		if !validPort(c.Redis.Port) {
			errs = append(errs, fmt.Errorf("redis.port %d out of range", c.Redis.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}

	if c.PostgresEnabled() && !validPort(c.Postgres.Port) {
		errs = append(errs, fmt.Errorf("db.port %d out of range", c.Postgres.Port))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive, got %s", c.PollInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}
