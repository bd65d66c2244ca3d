package mq

import (
	"errors"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Виды ошибок клиента брокера.
var (
	// ErrConnection — не удалось установить или удержать соединение.
	ErrConnection = errors.New("broker connection failed")

	// ErrProvision — объявление очереди отклонено брокером.
	ErrProvision = errors.New("queue provisioning failed")

	// ErrEncode — объект не удалось закодировать.
	ErrEncode = errors.New("encode failed")

	// ErrDecode — полученное сообщение не удалось декодировать.
	ErrDecode = errors.New("decode failed")

	// ErrPublish — брокер отклонил публикацию.
	ErrPublish = errors.New("publish failed")

	// ErrClosed — соединение закрыто клиентом через Close.
	ErrClosed = errors.New("connection closed by client")
)

var (
	errEmptyQueueName = errors.New("queue name is empty")
	errNacked         = errors.New("broker nacked the message")
)

// OpError — ошибка операции с контекстом: операция, очередь, вид и причина.
//
// errors.Is срабатывает и на вид (ErrPublish, ErrDecode, ...), и на причину.
type OpError struct {
	Op    string // connect, channel, declare, publish, get, decode
	Queue string // имя очереди, если операция к ней относится
	Kind  error  // один из Err* пакета
	Err   error  // исходная ошибка
}

// Error реализует интерфейс error.
func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Queue != "" {
		b.WriteString(" ")
		b.WriteString(e.Queue)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap возвращает вид ошибки и причину.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// withQueue дописывает имя очереди в OpError, если его там нет.
func withQueue(err error, queue string) error {
	var opErr *OpError
	if errors.As(err, &opErr) && opErr.Queue == "" {
		opErr.Queue = queue
	}
	return err
}

// IsQueueConflict сообщает, что очередь уже существует с другими
// параметрами (PRECONDITION_FAILED).
func IsQueueConflict(err error) bool {
	var amqpErr *amqp.Error
	return errors.As(err, &amqpErr) && amqpErr.Code == amqp.PreconditionFailed
}
