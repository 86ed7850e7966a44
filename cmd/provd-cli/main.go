// provd-cli — инструмент командной строки для администрирования
// сервера провижининга provd: конфиги, устройства, плагины, параметры
// и массовое обслуживание.
//
// Использование:
//
//	provd-cli [--host HOST] [--port PORT] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	config   Управление конфигами
//	device   Управление устройствами
//	plugin   Управление плагинами и пакетами
//	param    Параметры сервера
//	helpers  Отчёты и массовое обслуживание
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/provd-cli/internal/cli"
	"github.com/shaiso/provd-cli/internal/config"
	"github.com/shaiso/provd-cli/internal/maint"
	"github.com/shaiso/provd-cli/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// .env в рабочем каталоге необязателен
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	logger := telemetry.SetupLogger()
	app := cli.NewApp(logger, telemetry.NewMetrics())
	root := cli.NewRootCmd(app, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(telemetry.WithLogger(ctx, logger))
	if closeErr := app.Close(); closeErr != nil {
		logger.Warn("cleanup failed", "error", closeErr)
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, maint.ErrAborted):
		fmt.Fprintln(os.Stderr, "Aborted")
		return 1
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
}
