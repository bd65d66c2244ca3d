// Package telemetry обеспечивает наблюдаемость клиента брокера.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики соединения, публикации и потребления
//
// Все бинарники используют единый формат логирования
// и экспортируют метрики на /metrics endpoint.
package telemetry
