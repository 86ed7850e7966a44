// Package cli реализует команды provd-cli.
//
// # Обзор
//
// CLI — обёртка cobra над фасадом admin. Команды не работают с HTTP
// напрямую: они получают admin.Session через SessionFunc и печатают
// результат через Output.
//
// # Ключевые компоненты
//
// ## App
//
// Хранит глобальные флаги (--host, --port, --https, --verify, --token,
// --json, --no-progress, --async, --interval), собирает config.Config
// (файл, окружение, флаги) и один раз за процесс создаёт admin.Session
// с клиентом provd, аудитом и метриками.
//
//	app := cli.NewApp(logger, metrics)
//	root := cli.NewRootCmd(app, version)
//	err := root.ExecuteContext(ctx)
//	app.Close()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) и YAML для документов — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Warn/Error) — в stderr.
// Это позволяет использовать pipe: provd-cli device list --json | jq .
// В режиме --json прогресс операций тоже уходит в stderr.
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - config: list, show, raw, add, update, remove, remove-all, clone,
//     autocreate, set, unset, set-parents, count
//   - device: list, show, add, update, remove, remove-all, reconfigure,
//     synchronize, set, unset, count, group
//   - plugin: installable, installed, install, upgrade, uninstall,
//     uninstall-all, reload, update, count, pkg
//   - param: list, get, set, unset
//   - helpers: system-info, *-plugins, mass-update-plugin,
//     mass-synchronize, remove-transient-configs, test-connectivity, schedule
//
// Каждая группа создаётся через фабричную функцию (NewConfigCmd и т.д.),
// принимающую sessionFn и outputFn — замыкания для ленивого создания
// Session и Output после парсинга PersistentFlags.
//
// Аргументы вида key=value разбираются пакетом dotted: точка в ключе
// означает вложенность, значение — YAML-скаляр.
package cli
