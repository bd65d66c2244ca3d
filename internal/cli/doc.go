// Package cli реализует инструмент командной строки funckabots.
//
// # Обзор
//
// CLI публикует объекты и события в очередь выбранного брокера
// (RabbitMQ или Redis) и читает их обратно. Используется для отладки
// ботов и ручной отправки событий.
//
// # Ключевые компоненты
//
// ## Client
//
// Собирает Publisher и Source для backend из config.Config и, если
// задан DB_HOST, журнал событий store.EventLog.
//
//	client, err := cli.NewClient(ctx, cfg, logger, nil)
//	status, err := client.Publisher.Publish(ctx, obj, "events")
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: funcka listen --json | jq .
//
// ## Commands
//
//   - publish: публикация JSON-объекта
//   - event: сборка события из JSON-файла и публикация
//   - listen: чтение объектов из очереди
//   - history: последние события из журнала
//
// Команды создаются фабричными функциями (NewPublishCmd и т.д.),
// принимающими clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
