// Package store — реляционное хранилище ботов на PostgreSQL (pgx).
//
// Script выполняет unit of work в транзакции: коммит при успехе
// (если включён autoCommit), откат при ошибке, панике или без
// autoCommit. Транзакция закрывается на любом пути выхода.
//
// EventLog записывает полученные события в таблицу funcka_events.
package store
