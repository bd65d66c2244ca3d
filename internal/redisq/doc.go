// Package redisq — очередь объектов поверх списков Redis.
//
// Повторяет контракты mq для развёртываний без RabbitMQ: Publish
// кладёт закодированный объект в конец списка (RPUSH), Listen
// опрашивает голову списка (LPOP) и ждёт pollInterval, пока список
// пуст. Очереди в Redis неявные, объявлять их не нужно.
//
// Ошибки — *mq.OpError с теми же видами (mq.ErrConnection,
// mq.ErrEncode, mq.ErrDecode, mq.ErrPublish), поэтому вызывающий код
// не зависит от выбранного брокера.
package redisq
