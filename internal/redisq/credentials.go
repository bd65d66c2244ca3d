package redisq

import (
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPort — порт Redis по умолчанию.
const DefaultPort = 6379

// Credentials — параметры подключения к Redis.
type Credentials struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr возвращает host:port.
func (c Credentials) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// NewClient создаёт клиент Redis. Соединение устанавливается при первой команде.
func NewClient(creds Credentials) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         creds.Addr(),
		Password:     creds.Password,
		DB:           creds.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	})
}
