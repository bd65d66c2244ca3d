package mq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeliveryStatus — результат публикации, сообщённый брокером.
type DeliveryStatus string

const (
	// StatusAcked — брокер подтвердил приём (publisher confirms).
	StatusAcked DeliveryStatus = "acked"

	// StatusNacked — брокер отказался принять сообщение.
	StatusNacked DeliveryStatus = "nacked"

	// StatusUnconfirmed — канал без confirm-режима, подтверждения нет.
	StatusUnconfirmed DeliveryStatus = "unconfirmed"
)

// String реализует fmt.Stringer.
func (s DeliveryStatus) String() string {
	return string(s)
}

// Conn — соединение с брокером.
type Conn interface {
	// Channel открывает новый канал; confirm включает publisher confirms.
	Channel(confirm bool) (Channel, error)
	IsClosed() bool
	Close() error

	// CloseDeadline закрывает соединение, не дожидаясь ответа брокера
	// дольше deadline.
	CloseDeadline(deadline time.Time) error

	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	NotifyBlocked(receiver chan amqp.Blocking) chan amqp.Blocking
}

// Channel — операции канала, которыми пользуется клиент.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)

	// Publish публикует сообщение в default exchange с routing key = очередь.
	Publish(ctx context.Context, queue string, msg amqp.Publishing) (DeliveryStatus, error)

	// Get забирает одно сообщение из очереди; ok=false — очередь пуста.
	Get(queue string, autoAck bool) (msg amqp.Delivery, ok bool, err error)

	Close() error
}

// Dialer устанавливает соединение по URL и конфигурации.
type Dialer func(url string, cfg amqp.Config) (Conn, error)

// DefaultDialer подключается к настоящему RabbitMQ через amqp091-go.
func DefaultDialer(url string, cfg amqp.Config) (Conn, error) {
	conn, err := amqp.DialConfig(url, cfg)
	if err != nil {
		return nil, err
	}
	return &amqpConn{conn: conn}, nil
}

// amqpConn адаптирует *amqp.Connection к Conn.
type amqpConn struct {
	conn *amqp.Connection
}

func (c *amqpConn) Channel(confirm bool) (Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}

	if confirm {
		if err := ch.Confirm(false); err != nil {
			ch.Close()
			return nil, fmt.Errorf("enable confirms: %w", err)
		}
	}

	return &amqpChannel{ch: ch}, nil
}

func (c *amqpConn) IsClosed() bool {
	return c.conn.IsClosed()
}

func (c *amqpConn) Close() error {
	return c.conn.Close()
}

func (c *amqpConn) CloseDeadline(deadline time.Time) error {
	return c.conn.CloseDeadline(deadline)
}

func (c *amqpConn) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	return c.conn.NotifyClose(receiver)
}

func (c *amqpConn) NotifyBlocked(receiver chan amqp.Blocking) chan amqp.Blocking {
	return c.conn.NotifyBlocked(receiver)
}

// amqpChannel адаптирует *amqp.Channel к Channel.
type amqpChannel struct {
	ch *amqp.Channel
}

func (c *amqpChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	return c.ch.QueueDeclare(name, durable, autoDelete, exclusive, noWait, args)
}

func (c *amqpChannel) Publish(ctx context.Context, queue string, msg amqp.Publishing) (DeliveryStatus, error) {
	dc, err := c.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return StatusUnconfirmed, err
	}

	// Канал не в confirm-режиме
	if dc == nil {
		return StatusUnconfirmed, nil
	}

	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return StatusUnconfirmed, err
	}
	if !acked {
		return StatusNacked, nil
	}
	return StatusAcked, nil
}

func (c *amqpChannel) Get(queue string, autoAck bool) (amqp.Delivery, bool, error) {
	return c.ch.Get(queue, autoAck)
}

func (c *amqpChannel) Close() error {
	return c.ch.Close()
}
