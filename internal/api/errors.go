package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork wraps transport-level failures where no HTTP response
	// was received at all.
	ErrNetwork = errors.New("network error")

	// ErrAuthRequired is raised before dispatch when an endpoint needs a
	// bearer token and the session has none.
	ErrAuthRequired = errors.New("authentication required")
)

// HTTPError is a non-2xx response normalized into a single shape.
// Detail comes from the body's "detail" or "error" field, falling back
// to the raw body text.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
}

// ValidationError is a client-side rejection, no request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsNotFound reports whether err is an HTTP 404 from the backend.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}
