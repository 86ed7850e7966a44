package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — метрики одного запуска CLI.
//
// Используется собственный Registry, а не глобальный: в textfile
// попадают только метрики provd-cli, без go_* и process_*.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	operations *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует метрики.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provd_cli_requests_total",
			Help: "Total HTTP requests sent to provd",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "provd_cli_request_duration_seconds",
			Help:    "Duration of HTTP requests sent to provd",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provd_cli_operations_total",
			Help: "Long-running provd operations by kind and final state",
		}, []string{"kind", "state"}),
	}

	m.registry.MustRegister(m.requests, m.duration, m.operations)
	return m
}

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest учитывает HTTP-запрос. status 0 — ошибка транспорта.
func (m *Metrics) ObserveRequest(method string, status int, duration time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveOperation учитывает завершённую операцию.
func (m *Metrics) ObserveOperation(kind, state string) {
	m.operations.WithLabelValues(kind, state).Inc()
}

// WriteFile сохраняет метрики в формате textfile collector.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
