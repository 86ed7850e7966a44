package provd

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound — ресурс не найден (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrNoLocation — асинхронный запрос не вернул Location.
	ErrNoLocation = errors.New("operation location missing in response")

	// ErrMissingID — документ без поля id.
	ErrMissingID = errors.New("document has no id")
)

// APIError — ошибка, которую вернул сервер provd.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provd %s %s: HTTP %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("provd %s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Is позволяет проверять 404 через errors.Is(err, ErrNotFound).
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
