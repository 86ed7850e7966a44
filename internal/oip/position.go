package oip

import (
	"fmt"
	"strconv"
	"strings"
)

// Path — позиция узла в дереве: индексы детей от корня.
// Пустой путь — сам корень.
type Path []int

// Equal сравнивает пути поэлементно.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Child возвращает путь к i-му ребёнку. Исходный путь не меняется.
func (p Path) Child(i int) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, i)
}

// Depth возвращает глубину узла.
func (p Path) Depth() int {
	return len(p)
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Spec — позиция строки на экране.
//
// Completed=false — строка "операция идёт", Completed=true — строка
// "операция завершена". Каждый путь встречается в таблице дважды.
type Spec struct {
	Path      Path
	Completed bool
}

// Equal сравнивает позиции.
func (s Spec) Equal(other Spec) bool {
	return s.Completed == other.Completed && s.Path.Equal(other.Path)
}

func (s Spec) String() string {
	return fmt.Sprintf("%s/%t", s.Path, s.Completed)
}

// RootDone — позиция завершённого корня, последняя в любой таблице.
var RootDone = Spec{Path: Path{}, Completed: true}

// Flatten раскладывает дерево в таблицу позиций.
//
// Для каждого узла: {путь, false}, затем позиции всех потомков по порядку,
// затем {путь, true}. Таблица зависит только от формы дерева.
func Flatten(root Operation) []Spec {
	var table []Spec

	var walk func(op Operation, path Path)
	walk = func(op Operation, path Path) {
		table = append(table, Spec{Path: path})
		for i, child := range op.Children() {
			walk(child, path.Child(i))
		}
		table = append(table, Spec{Path: path, Completed: true})
	}
	walk(root, Path{})

	return table
}

// FindActive возвращает активную позицию.
//
// Спускается в первого ребёнка в состоянии progress. Если такого нет,
// активен текущий узел. Завершённый узел возвращается сразу как {путь, true}.
func FindActive(root Operation) Spec {
	op, path := root, Path{}

	for {
		if op.State().IsTerminal() {
			return Spec{Path: path, Completed: true}
		}

		next := -1
		children := op.Children()
		for i, child := range children {
			if child.State() == StateProgress {
				next = i
				break
			}
		}
		if next < 0 {
			return Spec{Path: path}
		}

		op, path = children[next], path.Child(next)
	}
}

// Resolve возвращает узел по пути.
// Индекс вне диапазона — ErrPositionOutOfRange.
func Resolve(root Operation, path Path) (Operation, error) {
	op := root
	for depth, idx := range path {
		children := op.Children()
		if idx < 0 || idx >= len(children) {
			return nil, fmt.Errorf("%w: index %d at depth %d of %s", ErrPositionOutOfRange, idx, depth, path)
		}
		op = children[idx]
	}
	return op, nil
}

// indexOf ищет позицию в таблице.
func indexOf(table []Spec, spec Spec) (int, error) {
	for i, s := range table {
		if s.Equal(spec) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrPositionNotFound, spec)
}
