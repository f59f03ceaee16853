package session

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginFailed        = errors.New("login failed")
	// ErrNoSession - сохранённой сессии нет
	ErrNoSession = errors.New("session not found")
	// ErrCorruptSession - сохранённая сессия не читается или противоречива
	ErrCorruptSession = errors.New("session corrupted")
)
