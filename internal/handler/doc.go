// Package handler запускает обработчики событий, полученных из очереди.
//
// Runner читает последовательность объектов из Source (mq.Subscriber
// или redisq.Queue), отбирает события events.Event и передаёт их
// Handler. Router выбирает обработчик по имени варианта события.
//
// После обработки событие всегда освобождается (Dispose). Ошибки и
// паники обработчика логируются и не останавливают чтение очереди.
// Ошибки Source, кроме ошибок декодирования, завершают Run.
package handler
