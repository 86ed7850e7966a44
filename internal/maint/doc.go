// Package maint — отчёты и массовое обслуживание сервера provd.
//
// # Обзор
//
// Функции пакета работают поверх admin.Session, которая передаётся
// явно первым аргументом после ctx. Отчёты (SystemInfo, UsedPlugins и
// т.п.) возвращают данные, массовые операции печатают ход работы в
// Session.Out и возвращают число обработанных объектов.
//
// # Регламентные задачи
//
// Scheduler запускает одну задачу из Jobs по cron-выражению, пока не
// отменён контекст. Если предыдущий запуск ещё идёт, очередной
// пропускается.
package maint
