package dotted

import "errors"

// ErrInvalidAssignment — аргумент не имеет вид key=value.
var ErrInvalidAssignment = errors.New("invalid assignment")
