package oip

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// defaultLabel — имя операции без label.
	defaultLabel = "operation"

	// indentWidth — отступ на один уровень вложенности.
	indentWidth = 4
)

// FormatOperation форматирует строку статуса: "<label> <state> <progress>".
//
// progress пустой без счётчика, "current" без итога (или с нулевым итогом)
// и "current/end" иначе.
func FormatOperation(op Operation) string {
	label := op.Label()
	if label == "" {
		label = defaultLabel
	}

	var progress string
	if current, ok := op.Current(); ok {
		if end, ok := op.End(); ok && end != 0 {
			progress = strconv.Itoa(current) + "/" + strconv.Itoa(end)
		} else {
			progress = strconv.Itoa(current)
		}
	}

	return label + " " + op.State().Word() + " " + progress
}

// FormatLine форматирует строку статуса с отступом по глубине пути.
func FormatLine(op Operation, path Path) string {
	return strings.Repeat(" ", indentWidth*path.Depth()) + FormatOperation(op)
}

type flusher interface {
	Flush() error
}

// Render переписывает строки экрана от позиции from до позиции to включительно.
//
// Правила:
//   - каждая строка начинается с '\r', '\n' пишется только между строками;
//   - строка "идёт" для узла, чья строка "завершена" тоже попадает в отрезок,
//     рисуется как "in progress..." без счётчиков;
//   - исключение — первая строка отрезка (если это не самая первая строка
//     таблицы): она уже на экране, вместо неё пишется только '\n'.
//
// Если from == to, строка перерисовывается на месте.
func Render(w io.Writer, root Operation, from, to Spec) error {
	table := Flatten(root)

	start, err := indexOf(table, from)
	if err != nil {
		return err
	}
	end, err := indexOf(table, to)
	if err != nil {
		return err
	}

	for idx := start; idx <= end; idx++ {
		spec := table[idx]

		op, err := Resolve(root, spec.Path)
		if err != nil {
			return err
		}

		if !spec.Completed && completesWithin(table[start:end+1], spec.Path) {
			if idx == start && idx != 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return fmt.Errorf("write progress line: %w", err)
				}
				continue
			}
			op = NewSnapshot(op.Label(), StateProgress)
		}

		line := "\r" + FormatLine(op, spec.Path)
		if idx != end {
			line += "\n"
		}
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("write progress line: %w", err)
		}
		if f, ok := w.(flusher); ok {
			if err := f.Flush(); err != nil {
				return fmt.Errorf("flush progress line: %w", err)
			}
		}
	}

	return nil
}

// completesWithin проверяет, есть ли в отрезке строка завершения узла path.
func completesWithin(specs []Spec, path Path) bool {
	for _, s := range specs {
		if s.Completed && s.Path.Equal(path) {
			return true
		}
	}
	return false
}
