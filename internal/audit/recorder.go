package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Sink — приёмник событий аудита.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}

// Recorder раздаёт события по приёмникам.
//
// Нулевой *Recorder допустим: Record и Track работают, но ничего не пишут.
type Recorder struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewRecorder создаёт Recorder.
func NewRecorder(logger *slog.Logger, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{sinks: sinks, logger: logger}
}

// Add подключает ещё один приёмник.
func (r *Recorder) Add(sink Sink) {
	r.sinks = append(r.sinks, sink)
}

// Record передаёт событие всем приёмникам.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	if r == nil {
		return
	}
	for _, sink := range r.sinks {
		if err := sink.Write(ctx, ev); err != nil {
			r.logger.Warn("audit sink failed",
				"sink", fmt.Sprintf("%T", sink),
				"action", ev.Action,
				"error", err,
			)
		}
	}
}

// Track выполняет fn и записывает событие с её результатом.
// Возвращает ошибку fn без изменений.
func (r *Recorder) Track(ctx context.Context, action, target string, fn func() error) error {
	started := time.Now()
	err := fn()
	r.Record(ctx, NewEvent(action, target, started, err))
	return err
}

// Close закрывает приёмники, реализующие io.Closer.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, sink := range r.sinks {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
