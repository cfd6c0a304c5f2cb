package api

import (
	"errors"
	"fmt"
)

// ErrInvalidID is returned for an identifier that would change the request
// path once resolved, such as "." or "..".
var ErrInvalidID = errors.New("invalid identifier")

// Error is a non-2xx response from the WSG endpoint.
type Error struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("WSG API error: %d %s\n%s", e.StatusCode, e.Status, e.Body)
}

// TransportError is a failure below HTTP status handling: DNS, connection reset, timeout.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
