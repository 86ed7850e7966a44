package audit

import (
	"context"
	"log/slog"
)

// LogSink пишет события в slog на уровне INFO.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink создаёт LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Write реализует Sink.
func (s *LogSink) Write(ctx context.Context, ev Event) error {
	s.logger.InfoContext(ctx, "audit",
		"id", ev.ID,
		"action", ev.Action,
		"target", ev.Target,
		"outcome", ev.Outcome,
		"error", ev.Error,
		"duration", ev.Duration,
	)
	return nil
}
