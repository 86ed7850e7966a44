package oip

import "fmt"

// State — состояние операции на сервере provd.
//
// Жизненный цикл:
//
//	waiting → progress → success
//	                   ↘ fail
//
// Состояние только продвигается вперёд, откатов не бывает.
type State string

const (
	// StateWaiting — операция создана и ждёт своей очереди.
	StateWaiting State = "waiting"

	// StateProgress — операция выполняется.
	StateProgress State = "progress"

	// StateFail — операция завершилась с ошибкой.
	StateFail State = "fail"

	// StateSuccess — операция успешно завершена.
	StateSuccess State = "success"
)

// IsTerminal возвращает true, если состояние финальное.
func (s State) IsTerminal() bool {
	switch s {
	case StateFail, StateSuccess:
		return true
	default:
		return false
	}
}

// Word возвращает слово состояния для строки статуса.
func (s State) Word() string {
	switch s {
	case StateWaiting:
		return "waiting..."
	case StateProgress:
		return "in progress..."
	case StateFail:
		return "failed."
	case StateSuccess:
		return "done."
	default:
		return string(s)
	}
}

// ParseState разбирает состояние из строки статуса сервера.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateWaiting, StateProgress, StateFail, StateSuccess:
		return State(s), nil
	default:
		return "", fmt.Errorf("%w: unknown state %q", ErrMalformedStatus, s)
	}
}
