package admin

import "errors"

// ErrOperationFailed — операция provd завершилась в состоянии fail.
var ErrOperationFailed = errors.New("operation failed")
