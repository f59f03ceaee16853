package client

import "errors"

var (
	// ErrNotAuthenticated - сохранённой сессии нет, нужен вход
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden - операция недоступна роли текущей сессии
	ErrForbidden = errors.New("operation not permitted for this role")
	// ErrUploadNotConfigured - не задан адрес загрузки или бакет
	ErrUploadNotConfigured = errors.New("upload endpoint is not configured")
	// ErrNoUsers - в системе ещё нет пользователей
	ErrNoUsers = errors.New("no users registered")
)
