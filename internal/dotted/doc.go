// Package dotted реализует типизированное дерево значений конфигурации
// с поддержкой "точечных" ключей.
//
// # Обзор
//
// В provd конфиг хранит raw_config — вложенный JSON-объект. В командной
// строке удобнее задавать значения плоско: "sip_lines.1.username=1001".
// Пакет превращает такой плоский набор в дерево и обратно.
//
// # Ключевые компоненты
//
//   - Value — лист (скаляр, список) или ветка (Tree)
//   - Tree — узел дерева: map[string]Value
//   - Expand — раскрытие точечных ключей
//   - Tree.Merge — рекурсивное наложение одного дерева на другое
//   - Tree.Unset — удаление значения по точечному пути
//   - ParseAssignments — разбор аргументов вида key=value
//
// # Неоднозначные раскрытия
//
// Набор {"a.b": 1, "a": {"b": 2}} не имеет однозначного раскрытия.
// Ключи обрабатываются в лексикографическом порядке, поэтому результат
// детерминирован: "a" раньше "a.b", и победит значение 1.
package dotted
