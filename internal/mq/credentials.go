package mq

import (
	"net"
	"net/url"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Значения по умолчанию для параметров подключения.
const (
	DefaultPort           = 5672
	DefaultVHost          = "/"
	DefaultHeartbeat      = 60 * time.Second
	DefaultBlockedTimeout = 300 * time.Second
	dialTimeout           = 30 * time.Second
)

// Credentials — параметры подключения к RabbitMQ.
type Credentials struct {
	Host     string
	Port     int
	VHost    string
	User     string
	Password string

	// Heartbeat — интервал heartbeat, согласуемый с брокером.
	Heartbeat time.Duration

	// BlockedTimeout — сколько соединение может оставаться заблокированным
	// брокером (connection.blocked), прежде чем клиент его закроет.
	// 0 отключает проверку.
	BlockedTimeout time.Duration
}

// URL возвращает AMQP URL без виртуального хоста (он передаётся через amqp.Config).
func (c Credentials) URL() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:   "/",
	}
	return u.String()
}

// vhost возвращает виртуальный хост или "/" по умолчанию.
func (c Credentials) vhost() string {
	if c.VHost == "" {
		return DefaultVHost
	}
	return c.VHost
}

// amqpConfig собирает amqp.Config для DialConfig.
func (c Credentials) amqpConfig() amqp.Config {
	heartbeat := c.Heartbeat
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}

	return amqp.Config{
		Vhost:     c.vhost(),
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	}
}
