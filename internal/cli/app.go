package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/shaiso/provd-cli/internal/admin"
	"github.com/shaiso/provd-cli/internal/audit"
	"github.com/shaiso/provd-cli/internal/config"
	"github.com/shaiso/provd-cli/internal/provd"
	"github.com/shaiso/provd-cli/internal/telemetry"
)

// SessionFunc лениво создаёт admin.Session после разбора флагов.
type SessionFunc func(ctx context.Context) (*admin.Session, error)

// App хранит глобальные флаги и собирает зависимости команд.
type App struct {
	Logger  *slog.Logger
	Metrics *telemetry.Metrics

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Terminal сообщает, что stdout — терминал (прогресс по умолчанию).
	Terminal bool

	// Styled включает цвет сообщений в stderr.
	Styled bool

	flags *pflag.FlagSet

	configPath string
	host       string
	port       int
	https      bool
	verify     verifyValue
	token      string
	jsonOutput bool
	noProgress bool
	async      bool
	interval   time.Duration

	cfg      *config.Config
	session  *admin.Session
	recorder *audit.Recorder
}

// NewApp создаёт App для стандартных потоков процесса.
func NewApp(logger *slog.Logger, metrics *telemetry.Metrics) *App {
	return &App{
		Logger:   logger,
		Metrics:  metrics,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Terminal: term.IsTerminal(int(os.Stdout.Fd())),
		Styled:   term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// BindFlags регистрирует глобальные флаги.
func (a *App) BindFlags(fs *pflag.FlagSet) {
	a.flags = fs

	fs.StringVar(&a.configPath, "config", "", "Config file (default $PROVD_CLI_CONFIG)")
	fs.StringVar(&a.host, "host", "", "provd server host (default localhost)")
	fs.IntVar(&a.port, "port", 0, "provd server port (default 8666)")
	fs.BoolVar(&a.https, "https", false, "Use HTTPS")
	fs.Var(&a.verify, "verify", "Verify server certificate: true, false or CA file path")
	fs.Lookup("verify").NoOptDefVal = "true"
	fs.StringVar(&a.token, "token", "", "Authentication token (default $PROVD_TOKEN)")
	fs.BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	fs.BoolVar(&a.noProgress, "no-progress", false, "Do not draw operation progress")
	fs.BoolVar(&a.async, "async", false, "Do not wait for operations, print their location")
	fs.DurationVar(&a.interval, "interval", 0, "Operation polling interval (default 1s)")
}

// Config загружает настройки и применяет поверх них флаги.
func (a *App) Config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		return a.flags != nil && a.flags.Changed(name)
	}
	if changed("host") {
		cfg.Server.Host = a.host
	}
	if changed("port") {
		cfg.Server.Port = a.port
	}
	if changed("https") {
		cfg.Server.HTTPS = a.https
	}
	if changed("verify") {
		cfg.Server.Verify = a.verify.String()
	}
	if changed("token") {
		cfg.Server.Token = a.token
	}
	if changed("json") {
		cfg.Display.JSON = a.jsonOutput
	}
	if changed("no-progress") {
		cfg.Display.Progress = !a.noProgress
	} else if !a.Terminal {
		cfg.Display.Progress = false
	}
	if changed("async") {
		cfg.Display.Async = a.async
	}
	if changed("interval") {
		cfg.Display.Interval = a.interval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a.cfg = cfg
	return cfg, nil
}

// Output создаёт Output по флагу --json.
func (a *App) Output() *Output {
	jsonMode := a.jsonOutput
	if cfg, err := a.Config(); err == nil {
		jsonMode = cfg.Display.JSON
	}
	return NewOutputTo(a.Stdout, a.Stderr, jsonMode, a.Styled)
}

// Session создаёт admin.Session один раз за процесс.
func (a *App) Session(ctx context.Context) (*admin.Session, error) {
	if a.session != nil {
		return a.session, nil
	}

	if a.Logger == nil {
		a.Logger = telemetry.FromContext(ctx)
	}

	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	opts := provd.Options{
		BaseURL: provd.BaseURL(cfg.Server.Host, cfg.Server.Port, cfg.Server.HTTPS, cfg.Server.Prefix),
		Token:   cfg.Server.Token,
		Timeout: cfg.Server.Timeout,
		Logger:  a.Logger,
	}
	if a.Metrics != nil {
		opts.Observer = a.Metrics
	}
	if cfg.Server.HTTPS {
		tlsConfig, err := provd.TLSConfig(cfg.Server.Verify)
		if err != nil {
			return nil, err
		}
		opts.TLSConfig = tlsConfig
	}

	a.recorder = a.newRecorder(ctx, cfg.Audit)

	// В режиме --json stdout занят данными, прогресс уходит в stderr.
	progressOut := a.Stdout
	if cfg.Display.JSON {
		progressOut = a.Stderr
	}

	sessionCfg := admin.SessionConfig{
		Options: admin.Options{
			SearchDescription:   cfg.Search.Description,
			SearchCaseSensitive: cfg.Search.CaseSensitive,
			OpProgress:          cfg.Display.Progress,
			OpAsync:             cfg.Display.Async,
			UpdateInterval:      cfg.Display.Interval,
		},
		Out:    progressOut,
		Logger: a.Logger,
		Audit:  a.recorder,
	}
	if a.Metrics != nil {
		sessionCfg.Metrics = a.Metrics
	}

	a.session = admin.NewSession(admin.FromClient(provd.NewClient(opts), sessionCfg))
	return a.session, nil
}

// newRecorder подключает приёмники аудита. Недоступный приёмник
// пропускается с предупреждением.
func (a *App) newRecorder(ctx context.Context, cfg config.AuditConfig) *audit.Recorder {
	rec := audit.NewRecorder(a.Logger, audit.NewLogSink(a.Logger))

	if cfg.AMQPURL != "" {
		sink, err := audit.NewAMQPSink(cfg.AMQPURL, a.Logger)
		if err != nil {
			a.Logger.Warn("RabbitMQ not available, audit events will not be published", "error", err)
		} else {
			rec.Add(sink)
		}
	}

	if cfg.DBURL != "" {
		sink, err := audit.NewPGSink(ctx, cfg.DBURL)
		if err != nil {
			a.Logger.Warn("PostgreSQL not available, audit events will not be stored", "error", err)
		} else {
			rec.Add(sink)
		}
	}

	return rec
}

// Close освобождает приёмники аудита и сохраняет метрики.
func (a *App) Close() error {
	var errs []error
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audit: %w", err))
		}
	}
	if a.cfg != nil && a.cfg.MetricsFile != "" && a.Metrics != nil {
		if err := a.Metrics.WriteFile(a.cfg.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}
