package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/shaiso/provd-cli/internal/audit"
	"github.com/shaiso/provd-cli/internal/oip"
	"github.com/shaiso/provd-cli/internal/provd"
	"github.com/shaiso/provd-cli/internal/telemetry"
)

// Options — поведение фасада.
type Options struct {
	// SearchDescription — искать подстроку также в описании пакета.
	SearchDescription bool

	// SearchCaseSensitive — учитывать регистр при поиске.
	SearchCaseSensitive bool

	// OpProgress — рисовать прогресс операций.
	OpProgress bool

	// OpAsync — не ждать операции, возвращать handle.
	OpAsync bool

	// UpdateInterval — период опроса операции.
	UpdateInterval time.Duration
}

// DefaultOptions возвращает настройки по умолчанию.
func DefaultOptions() Options {
	return Options{
		SearchDescription: true,
		OpProgress:        true,
		UpdateInterval:    oip.DefaultInterval,
	}
}

// Operation — асинхронная операция provd.
type Operation interface {
	oip.Handle

	// Location — URL операции на сервере.
	Location() string
}

// ConfigManager — доступ к конфигам provd.
type ConfigManager interface {
	List(ctx context.Context, q provd.Query) ([]provd.Document, error)
	Get(ctx context.Context, id string) (provd.Document, error)
	GetRaw(ctx context.Context, id string) (provd.Document, error)
	Create(ctx context.Context, config provd.Document) (string, error)
	Update(ctx context.Context, config provd.Document) error
	Delete(ctx context.Context, id string) error
	Autocreate(ctx context.Context) (string, error)
}

// DeviceManager — доступ к устройствам provd.
type DeviceManager interface {
	List(ctx context.Context, q provd.Query) ([]provd.Document, error)
	Get(ctx context.Context, id string) (provd.Document, error)
	Create(ctx context.Context, device provd.Document) (string, error)
	Update(ctx context.Context, device provd.Document) error
	Delete(ctx context.Context, id string) error
	Reconfigure(ctx context.Context, id string) error
	Synchronize(ctx context.Context, id string) (Operation, error)
}

// PluginManager — доступ к плагинам provd.
type PluginManager interface {
	Install(ctx context.Context, id string) (Operation, error)
	Upgrade(ctx context.Context, id string) (Operation, error)
	Uninstall(ctx context.Context, id string) error
	UpdateIndex(ctx context.Context) (Operation, error)
	Reload(ctx context.Context, id string) error
	Installed(ctx context.Context) (map[string]provd.Document, error)
	Installable(ctx context.Context) (map[string]provd.Document, error)

	InstallPackage(ctx context.Context, plugin, pkg string) (Operation, error)
	UpgradePackage(ctx context.Context, plugin, pkg string) (Operation, error)
	UninstallPackage(ctx context.Context, plugin, pkg string) error
	PackagesInstalled(ctx context.Context, plugin string) (map[string]provd.Document, error)
	PackagesInstallable(ctx context.Context, plugin string) (map[string]provd.Document, error)
}

// ParamManager — доступ к параметрам сервера.
type ParamManager interface {
	List(ctx context.Context) ([]provd.ParamInfo, error)
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
}

// OperationObserver получает итог каждой отслеженной операции (для метрик).
type OperationObserver interface {
	ObserveOperation(kind, state string)
}

// SessionConfig — зависимости Session.
type SessionConfig struct {
	Configs ConfigManager
	Devices DeviceManager
	Plugins PluginManager
	Params  ParamManager

	Options Options

	// Out — куда писать прогресс и сообщения. По умолчанию os.Stdout.
	Out io.Writer

	Logger  *slog.Logger
	Audit   *audit.Recorder
	Metrics OperationObserver

	// Sleep заменяет ожидание между опросами (для тестов).
	Sleep func(ctx context.Context, d time.Duration) error
}

// Session — контекст работы с одним сервером provd.
type Session struct {
	Configs    *Configs
	Devices    *Devices
	Plugins    *Plugins
	Parameters *Parameters

	Options Options

	out     io.Writer
	logger  *slog.Logger
	audit   *audit.Recorder
	metrics OperationObserver
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewSession создаёт Session.
func NewSession(cfg SessionConfig) *Session {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		Options: cfg.Options,
		out:     out,
		logger:  logger,
		audit:   cfg.Audit,
		metrics: cfg.Metrics,
		sleep:   cfg.Sleep,
	}
	s.Configs = &Configs{s: s, mgr: cfg.Configs}
	s.Devices = &Devices{s: s, mgr: cfg.Devices}
	s.Plugins = &Plugins{s: s, mgr: cfg.Plugins}
	s.Parameters = &Parameters{s: s, mgr: cfg.Params}
	return s
}

// Out возвращает writer для сообщений.
func (s *Session) Out() io.Writer {
	return s.out
}

// Logger возвращает логгер сессии.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Audit возвращает журнал аудита (может быть nil).
func (s *Session) Audit() *audit.Recorder {
	return s.audit
}

// TestConnectivity проверяет доступность сервера.
func (s *Session) TestConnectivity(ctx context.Context) error {
	if _, err := s.Plugins.mgr.Installable(ctx); err != nil {
		return fmt.Errorf("connect to provd: %w", err)
	}
	return nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// track выполняет изменяющее действие и пишет событие аудита.
func (s *Session) track(ctx context.Context, action, target string, fn func() error) error {
	return s.audit.Track(ctx, action, target, fn)
}

// await доводит операцию до конца согласно Options.
//
// При OpAsync возвращает op как есть. Иначе отслеживает её через
// oip.Follow, которая освобождает операцию на сервере при любом исходе,
// и возвращает nil.
func (s *Session) await(ctx context.Context, kind string, op Operation) (Operation, error) {
	logger := telemetry.WithOperation(s.logger, op.Location()).With("kind", kind)

	if s.Options.OpAsync {
		logger.Debug("operation left running")
		return op, nil
	}

	display := oip.NewDisplay(s.out, logger)
	if s.Options.UpdateInterval > 0 {
		display.Interval = s.Options.UpdateInterval
	}
	if s.sleep != nil {
		display.Sleep = s.sleep
	}

	follow := display.Progress
	if !s.Options.OpProgress {
		follow = display.Silent
	}

	err := oip.Follow(ctx, op, follow)
	state := string(op.State())
	if err != nil {
		state = "error"
	}
	if s.metrics != nil {
		s.metrics.ObserveOperation(kind, state)
	}
	if err != nil {
		return nil, err
	}

	if op.State() == oip.StateFail {
		return nil, fmt.Errorf("%w: %s", ErrOperationFailed, kind)
	}
	logger.Debug("operation finished", "state", state)
	return nil, nil
}

// run запускает операцию, ждёт её и пишет событие аудита.
func (s *Session) run(ctx context.Context, kind, target string, start func() (Operation, error)) (Operation, error) {
	var pending Operation
	err := s.track(ctx, kind, target, func() error {
		op, err := start()
		if err != nil {
			return err
		}
		pending, err = s.await(ctx, kind, op)
		return err
	})
	return pending, err
}
