package objectstore

import (
	"errors"
	"fmt"
)

var (
	ErrTransport = errors.New("object store transport error")
	ErrServer    = errors.New("object store server error")
)

// StatusError - неуспешный ответ хранилища
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("object store: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("object store: status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrServer
}

func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}

func serverError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrServer, err)
}
