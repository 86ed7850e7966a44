package maint

import "errors"

var (
	// ErrAborted — пользователь отказался продолжать.
	ErrAborted = errors.New("aborted by user")

	// ErrUnknownJob — задачи с таким именем нет.
	ErrUnknownJob = errors.New("unknown job")
)
