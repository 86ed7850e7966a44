package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// LogLevel определяет уровень логирования из переменной окружения.
// Возможные значения: DEBUG, INFO, WARN, ERROR
// По умолчанию: WARN — CLI не должен шуметь без запроса.
func LogLevel() slog.Level {
	level := os.Getenv("LOG_LEVEL")
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// LogFormat возвращает формат логов: "json" или "text".
//
// Явное значение берётся из LOG_FORMAT. Иначе на терминале — text,
// в остальных случаях (cron, systemd, пайп) — json.
func LogFormat() string {
	switch format := os.Getenv("LOG_FORMAT"); format {
	case "json", "text":
		return format
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return "text"
	}
	return "json"
}

// SetupLogger инициализирует глобальный логгер с выводом в stderr.
func SetupLogger() *slog.Logger {
	logger := NewLogger(os.Stderr, LogFormat(), LogLevel())
	slog.SetDefault(logger)
	return logger
}

// NewLogger создаёт логгер с заданным форматом и уровнем.
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Ключи контекста для передачи данных в логгер.
type ctxKey string

const (
	// CtxLogger — ключ для логгера в контексте.
	CtxLogger ctxKey = "logger"
)

// WithLogger добавляет логгер в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext извлекает логгер из контекста.
// Если логгер не найден, возвращает глобальный.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithOperation возвращает логгер с добавленным location операции.
func WithOperation(logger *slog.Logger, location string) *slog.Logger {
	return logger.With("operation", location)
}

// WithJob возвращает логгер с добавленным именем задачи обслуживания.
func WithJob(logger *slog.Logger, job string) *slog.Logger {
	return logger.With("job", job)
}
