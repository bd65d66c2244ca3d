// Package mq предоставляет клиент RabbitMQ: соединение, очереди,
// публикацию и потребление произвольных объектов.
//
// Структура:
//   - credentials.go — параметры подключения
//   - amqp.go        — тонкие адаптеры над amqp091-go (Conn, Channel)
//   - connection.go  — управление соединением (bounded retry, проверка живости, замена)
//   - topology.go    — идемпотентное объявление durable очередей
//   - publisher.go   — публикация объекта в очередь через default exchange
//   - subscriber.go  — polling-потребление очереди как ленивая последовательность
//
// Каждая операция открывает собственный канал: публикация закрывает
// канал сразу, подписка держит его до конца итерации. Объекты
// кодируются пакетом codec.
package mq
