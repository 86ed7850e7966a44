// Package oip отслеживает и отображает операции provd, выполняющиеся долго
// (operation in progress, OIP).
//
// # Обзор
//
// Асинхронные запросы provd (install, upgrade, synchronize, update) возвращают
// handle операции. Операция — дерево: у корня есть упорядоченные дочерние
// операции, у каждой своё состояние и, возможно, счётчики current/end.
// Клиент опрашивает handle до финального состояния и рисует в терминале
// многострочный статус, перерисовывая только изменившиеся строки.
//
// # Ключевые компоненты
//
// ## Flatten
//
// Дерево раскладывается в линейную таблицу позиций: для каждого узла
// {путь, false} до детей и {путь, true} после них. Строки на экране идут
// в том же порядке, поэтому отрезок таблицы между прошлой и текущей активной
// позицией — это ровно те строки, которые нужно переписать.
//
// ## FindActive
//
// Активная позиция — самый левый путь по детям в состоянии progress.
// Завершённый узел даёт позицию {путь, true}.
//
// ## Render
//
// Перерисовывает отрезок таблицы. Каждая строка начинается с '\r', '\n'
// пишется только между строками одного вызова, поэтому следующий опрос
// перезаписывает последнюю строку на месте.
//
// ## Display
//
// Цикл опроса: Update → FindActive → Render → пауза Interval.
// Progress рисует дерево, Silent печатает одну итоговую строку.
// Follow гарантирует вызов Delete на любом пути выхода.
//
//	err := oip.Follow(ctx, handle, oip.NewDisplay(os.Stdout, logger).Progress)
package oip
