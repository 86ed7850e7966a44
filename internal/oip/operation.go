package oip

import "context"

// Operation — дерево операции, как его видит клиент.
//
// Дети фиксируются при первом чтении: Update меняет только состояние
// и счётчики, но не форму дерева.
type Operation interface {
	// State возвращает текущее состояние.
	State() State

	// Label возвращает имя операции. Пустая строка — имени нет.
	Label() string

	// Current возвращает счётчик прогресса, если он есть.
	Current() (int, bool)

	// End возвращает общее количество шагов, если оно известно.
	End() (int, bool)

	// Children возвращает дочерние операции по порядку.
	Children() []Operation
}

// Handle — корневая операция, за которой следит клиент.
type Handle interface {
	Operation

	// Update обновляет состояние с сервера. Блокируется на сетевом запросе.
	Update(ctx context.Context) error

	// Delete освобождает ресурс операции на сервере.
	Delete(ctx context.Context) error
}

// Snapshot — операция в памяти.
//
// Используется парсером статуса и для синтетической строки "in progress"
// при перерисовке.
type Snapshot struct {
	label    string
	state    State
	current  *int
	end      *int
	children []*Snapshot
}

// NewSnapshot создаёт операцию с заданными детьми.
func NewSnapshot(label string, state State, children ...*Snapshot) *Snapshot {
	return &Snapshot{
		label:    label,
		state:    state,
		children: children,
	}
}

// SetState меняет состояние.
func (s *Snapshot) SetState(state State) *Snapshot {
	s.state = state
	return s
}

// SetProgress выставляет счётчик без известного итога.
func (s *Snapshot) SetProgress(current int) *Snapshot {
	s.current = &current
	s.end = nil
	return s
}

// SetCount выставляет счётчик и итог.
func (s *Snapshot) SetCount(current, end int) *Snapshot {
	s.current = &current
	s.end = &end
	return s
}

// Child возвращает i-го ребёнка.
func (s *Snapshot) Child(i int) *Snapshot {
	return s.children[i]
}

// State реализует Operation.
func (s *Snapshot) State() State { return s.state }

// Label реализует Operation.
func (s *Snapshot) Label() string { return s.label }

// Current реализует Operation.
func (s *Snapshot) Current() (int, bool) {
	if s.current == nil {
		return 0, false
	}
	return *s.current, true
}

// End реализует Operation.
func (s *Snapshot) End() (int, bool) {
	if s.end == nil {
		return 0, false
	}
	return *s.end, true
}

// Children реализует Operation.
func (s *Snapshot) Children() []Operation {
	ops := make([]Operation, len(s.children))
	for i, child := range s.children {
		ops[i] = child
	}
	return ops
}
