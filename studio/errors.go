package studio

import "errors"

// ErrClientNotFound is returned when no chat client is registered under a name.
var ErrClientNotFound = errors.New("chat client not found")

// ServiceInternalError reports that a client's configuration could not be read.
type ServiceInternalError struct {
	Message string
	Err     error
}

func (e *ServiceInternalError) Error() string {
	return "service internal error: " + e.Message
}

func (e *ServiceInternalError) Unwrap() error { return e.Err }
