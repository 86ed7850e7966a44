package maint

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/provd-cli/internal/admin"
	"github.com/shaiso/provd-cli/internal/audit"
	"github.com/shaiso/provd-cli/internal/telemetry"
)

// cronParser — парсер cron-выражений (5 полей и дескрипторы вида @daily).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// JobFunc — регламентная задача.
type JobFunc func(ctx context.Context, s *admin.Session) error

// Jobs возвращает задачи, доступные для планирования.
func Jobs() map[string]JobFunc {
	return map[string]JobFunc{
		"mass-synchronize": func(ctx context.Context, s *admin.Session) error {
			_, err := MassSynchronize(ctx, s, false)
			return err
		},
		"remove-transient-configs": func(ctx context.Context, s *admin.Session) error {
			_, err := RemoveTransientConfigs(ctx, s)
			return err
		},
		"update-plugins": func(ctx context.Context, s *admin.Session) error {
			_, err := s.Plugins.Update(ctx)
			return err
		},
	}
}

// JobNames возвращает имена задач в алфавитном порядке.
func JobNames() []string {
	var names []string
	for name := range Jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// NextRun вычисляет следующее время запуска после from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return schedule.Next(from), nil
}

// SchedulerConfig — конфигурация Scheduler.
type SchedulerConfig struct {
	Session *admin.Session
	Job     string
	Expr    string

	// Timezone — часовой пояс выражения. Пусто — локальный.
	Timezone string
}

// Scheduler запускает одну задачу по расписанию.
type Scheduler struct {
	session *admin.Session
	name    string
	job     JobFunc
	expr    string
	loc     *time.Location
	logger  *slog.Logger
	audit   *audit.Recorder

	running atomic.Bool
}

// NewScheduler создаёт Scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	job, ok := Jobs()[cfg.Job]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, cfg.Job)
	}
	if err := ValidateCronExpr(cfg.Expr); err != nil {
		return nil, err
	}

	loc := time.Local
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone: %w", err)
		}
	}

	return &Scheduler{
		session: cfg.Session,
		name:    cfg.Job,
		job:     job,
		expr:    cfg.Expr,
		loc:     loc,
		logger:  telemetry.WithJob(cfg.Session.Logger(), cfg.Job),
		audit:   cfg.Session.Audit(),
	}, nil
}

// Run запускает задачу по расписанию до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLocation(s.loc),
		cron.WithChain(cron.Recover(cronLogger{s.logger})),
	)

	if _, err := c.AddFunc(s.expr, func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("schedule %s: %w", s.name, err)
	}

	next, _ := NextRun(s.expr, time.Now().In(s.loc))
	s.logger.Info("scheduler started", "expr", s.expr, "next_run", next)

	c.Start()
	<-ctx.Done()

	// Ждём завершения текущего запуска.
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// Tick выполняет задачу один раз. Если предыдущий запуск ещё идёт,
// возвращает false и ничего не делает.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in progress, skipping")
		return false
	}
	defer s.running.Store(false)

	s.logger.Info("job started")
	err := s.audit.Track(ctx, "maint."+s.name, "", func() error {
		return s.job(ctx, s.session)
	})
	if err != nil {
		s.logger.Error("job failed", "error", err)
	} else {
		s.logger.Info("job completed")
	}
	return true
}

// cronLogger адаптирует slog к cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
