package audit

import (
	"time"

	"github.com/google/uuid"
)

// Outcome — результат действия.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event — запись журнала аудита.
type Event struct {
	ID       uuid.UUID     `json:"id"`
	Time     time.Time     `json:"time"`
	Action   string        `json:"action"`
	Target   string        `json:"target,omitempty"`
	Outcome  Outcome       `json:"outcome"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// NewEvent создаёт событие по результату действия.
func NewEvent(action, target string, started time.Time, err error) Event {
	ev := Event{
		ID:       uuid.New(),
		Time:     started.UTC(),
		Action:   action,
		Target:   target,
		Outcome:  OutcomeSuccess,
		Duration: time.Since(started),
	}
	if err != nil {
		ev.Outcome = OutcomeFailure
		ev.Error = err.Error()
	}
	return ev
}
