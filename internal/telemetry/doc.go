// Package telemetry обеспечивает наблюдаемость provd-cli.
//
// Включает:
//   - logging.go — structured logging через slog (в stderr)
//   - metrics.go — Prometheus метрики запросов и операций
//
// Логи пишутся в stderr, чтобы не смешиваться с выводом прогресса
// операций в stdout. Метрики CLI не отдаёт по HTTP: процесс живёт
// недолго, поэтому при выходе они сохраняются в textfile для
// node_exporter.
package telemetry
