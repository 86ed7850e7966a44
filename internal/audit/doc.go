// Package audit записывает журнал изменений, выполненных через provd-cli.
//
// # Обзор
//
// Каждая изменяющая команда (добавление конфига, синхронизация устройства,
// установка плагина) порождает Event. Recorder раздаёт событие всем
// подключённым Sink. Ошибка приёмника никогда не ломает саму команду:
// она только логируется.
//
// # Ключевые компоненты
//
//   - Event — запись журнала
//   - Recorder — fan-out по приёмникам, Track для замера операции
//   - LogSink — запись в slog
//   - AMQPSink — публикация в RabbitMQ (topic exchange provd.cli.audit)
//   - PGSink — запись в PostgreSQL (таблица provd_cli_audit)
package audit
