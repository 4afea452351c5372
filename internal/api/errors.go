package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is an HTTP-level rejection from the backend: the server was reached
// and answered with a non-2xx status. Callers render these differently from
// transport failures, so the two are distinct types.
type Error struct {
	Status  int
	Message string
	// Existing is the record echoed back on "already exists" conflicts,
	// offered to the user as a pre-fill convenience.
	Existing json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// NotFound reports whether the error is a 404.
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// Conflict reports whether the error is an "already exists" style rejection.
func (e *Error) Conflict() bool { return e.Status == http.StatusConflict }

// ConnectionError wraps a transport failure: DNS, refused connection,
// timeout. The server never produced a response.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("server unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

// IsUnreachable reports whether err means the server could not be reached.
func IsUnreachable(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
