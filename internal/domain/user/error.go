package user

import "errors"

var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError уточняет ошибку кодом для слоя представления
type DomainError struct {
	Err     error
	Message string
	Code    string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func invalidInput(code, message string) error {
	return &DomainError{Err: ErrInvalidInput, Message: message, Code: code}
}
