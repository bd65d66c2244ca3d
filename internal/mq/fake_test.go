package mq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeBroker — брокер в памяти для тестов: durable очереди, default exchange, basic.get.
type fakeBroker struct {
	mu sync.Mutex

	queues map[string]*fakeQueue

	dialFailures int // сколько первых dial завершатся ошибкой
	dials        int
	nack         bool
	declares     int

	conns []*fakeConn
}

type fakeQueue struct {
	durable bool
	msgs    []amqp.Delivery
}

var errDialRefused = errors.New("dial tcp: connection refused")

func newFakeBroker() *fakeBroker {
	return &fakeBroker{queues: make(map[string]*fakeQueue)}
}

func (b *fakeBroker) dial(_ string, _ amqp.Config) (Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.dials++
	if b.dials <= b.dialFailures {
		return nil, errDialRefused
	}

	conn := &fakeConn{broker: b}
	b.conns = append(b.conns, conn)
	return conn, nil
}

func (b *fakeBroker) dialCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

func (b *fakeBroker) queueCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues)
}

func (b *fakeBroker) depth(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if q, ok := b.queues[name]; ok {
		return len(q.msgs)
	}
	return 0
}

func (b *fakeBroker) lastConn() *fakeConn {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.conns) == 0 {
		return nil
	}
	return b.conns[len(b.conns)-1]
}

// push кладёт сырое тело в очередь, минуя кодек.
func (b *fakeBroker) push(queue string, body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[queue]
	if !ok {
		q = &fakeQueue{durable: true}
		b.queues[queue] = q
	}
	q.msgs = append(q.msgs, amqp.Delivery{Body: body, MessageId: "raw"})
}

type fakeConn struct {
	broker *fakeBroker

	mu        sync.Mutex
	closed    bool
	closeChs  []chan *amqp.Error
	blockChs  []chan amqp.Blocking
	channels  []*fakeChannel
	failOpens bool

	// closeHang, если задан, задерживает Close до его закрытия:
	// так ведёт себя заблокированный брокер, не отвечающий close-ok.
	closeHang chan struct{}

	deadlineCloses int
}

func (c *fakeConn) Channel(confirm bool) (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, amqp.ErrClosed
	}
	if c.failOpens {
		return nil, errors.New("channel_max reached")
	}
	ch := &fakeChannel{conn: c, confirm: confirm}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	hang := c.closeHang
	closed := c.closed
	c.mu.Unlock()

	if hang != nil && !closed {
		<-hang
	}
	return c.shutdown(nil)
}

// CloseDeadline закрывает сокет, не дожидаясь брокера.
func (c *fakeConn) CloseDeadline(deadline time.Time) error {
	c.mu.Lock()
	c.deadlineCloses++
	c.mu.Unlock()

	if time.Now().After(deadline) {
		return errors.New("deadline already passed")
	}
	return c.shutdown(nil)
}

// hangOnClose заставляет Close ждать до конца теста.
func (c *fakeConn) hangOnClose(t interface{ Cleanup(func()) }) {
	hang := make(chan struct{})
	t.Cleanup(func() { close(hang) })

	c.mu.Lock()
	c.closeHang = hang
	c.mu.Unlock()
}

func (c *fakeConn) deadlineCloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deadlineCloses
}

// drop имитирует разрыв соединения со стороны брокера.
func (c *fakeConn) drop() {
	c.shutdown(&amqp.Error{Code: amqp.ConnectionForced, Reason: "CONNECTION_FORCED - broker forced connection closure"})
}

func (c *fakeConn) shutdown(reason *amqp.Error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return amqp.ErrClosed
	}
	c.closed = true

	for _, ch := range c.closeChs {
		if reason != nil {
			ch <- reason
		}
		close(ch)
	}
	for _, ch := range c.blockChs {
		close(ch)
	}
	return nil
}

func (c *fakeConn) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeChs = append(c.closeChs, receiver)
	return receiver
}

func (c *fakeConn) NotifyBlocked(receiver chan amqp.Blocking) chan amqp.Blocking {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockChs = append(c.blockChs, receiver)
	return receiver
}

// block имитирует connection.blocked / connection.unblocked.
func (c *fakeConn) block(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.blockChs {
		ch <- amqp.Blocking{Active: active, Reason: "low on memory"}
	}
}

func (c *fakeConn) channelCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.channels)
}

func (c *fakeConn) openChannels() int {
	c.mu.Lock()
	chans := append([]*fakeChannel(nil), c.channels...)
	c.mu.Unlock()

	open := 0
	for _, ch := range chans {
		ch.mu.Lock()
		if !ch.closed {
			open++
		}
		ch.mu.Unlock()
	}
	return open
}

type fakeChannel struct {
	conn    *fakeConn
	confirm bool

	mu     sync.Mutex
	closed bool
}

func (ch *fakeChannel) isClosed() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.closed || ch.conn.IsClosed()
}

func (ch *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if ch.isClosed() {
		return amqp.Queue{}, amqp.ErrClosed
	}

	b := ch.conn.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	b.declares++
	q, ok := b.queues[name]
	if !ok {
		b.queues[name] = &fakeQueue{durable: durable}
		return amqp.Queue{Name: name}, nil
	}

	if q.durable != durable {
		ch.mu.Lock()
		ch.closed = true
		ch.mu.Unlock()
		return amqp.Queue{}, &amqp.Error{
			Code:   amqp.PreconditionFailed,
			Reason: "PRECONDITION_FAILED - inequivalent arg 'durable' for queue '" + name + "'",
		}
	}

	return amqp.Queue{Name: name, Messages: len(q.msgs)}, nil
}

func (ch *fakeChannel) Publish(_ context.Context, queue string, msg amqp.Publishing) (DeliveryStatus, error) {
	if ch.isClosed() {
		return StatusUnconfirmed, amqp.ErrClosed
	}

	b := ch.conn.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.nack {
		return StatusNacked, nil
	}

	// default exchange молча отбрасывает сообщения в несуществующую очередь
	if q, ok := b.queues[queue]; ok {
		q.msgs = append(q.msgs, amqp.Delivery{
			Body:        msg.Body,
			MessageId:   msg.MessageId,
			ContentType: msg.ContentType,
		})
	}

	if !ch.confirm {
		return StatusUnconfirmed, nil
	}
	return StatusAcked, nil
}

func (ch *fakeChannel) Get(queue string, _ bool) (amqp.Delivery, bool, error) {
	if ch.isClosed() {
		return amqp.Delivery{}, false, amqp.ErrClosed
	}

	b := ch.conn.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[queue]
	if !ok || len(q.msgs) == 0 {
		return amqp.Delivery{}, false, nil
	}

	msg := q.msgs[0]
	q.msgs = q.msgs[1:]
	return msg, true, nil
}

func (ch *fakeChannel) Close() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return amqp.ErrClosed
	}
	ch.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConnection(b *fakeBroker, maxAttempts int) *Connection {
	return NewConnection(ConnectionConfig{
		Credentials: Credentials{Host: "localhost", User: "guest", Password: "guest"},
		MaxAttempts: maxAttempts,
		RetryDelay:  time.Millisecond,
		Dialer:      b.dial,
	}, discardLogger())
}
