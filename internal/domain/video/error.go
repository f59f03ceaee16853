package video

import "errors"

var (
	// ErrNoOwner - у сессии нет идентификатора пользователя (например, администратор)
	ErrNoOwner = errors.New("video owner is not set")
	// ErrInvalidInput - пустое название или адрес
	ErrInvalidInput = errors.New("invalid input")
)
