// Package config загружает конфигурацию ботов через viper.
//
// Источники в порядке приоритета: флаги (BindPFlag), переменные
// окружения (RABBITMQ_HOST, REDIS_PORT, DB_NAME, ...), файл
// конфигурации (yaml/json/toml, опционально), значения по умолчанию.
// Ключ "rabbitmq.host" соответствует переменной RABBITMQ_HOST.
package config
