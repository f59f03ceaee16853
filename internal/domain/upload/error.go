package upload

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation - неверные входные данные, передача не начиналась
	ErrValidation = errors.New("upload validation error")
	// ErrTimeout - передача не уложилась в отведённое время
	ErrTimeout = errors.New("upload timed out")
	// ErrTransport - сетевой сбой при передаче
	ErrTransport = errors.New("upload transport error")
	// ErrServer - сервер загрузки ответил неуспешным статусом
	ErrServer = errors.New("upload server error")
	// ErrResponse - ответ без url или не JSON
	ErrResponse = errors.New("upload response error")
	// ErrRegistrationFailed - файл передан, но запись о видео не создана
	ErrRegistrationFailed = errors.New("video registration failed")
	// ErrBusy - предыдущая загрузка ещё идёт
	ErrBusy = errors.New("upload already in progress")
	// ErrCanceled - загрузка отменена вызывающей стороной
	ErrCanceled = errors.New("upload canceled")
)

// StatusError - неуспешный ответ сервера загрузки
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload server responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("upload server responded with status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrServer
}

// RegistrationError - файл уже лежит по URL, но запись о видео не создана.
// Вызывающая сторона может повторить регистрацию с тем же URL.
type RegistrationError struct {
	URL   string
	Title string
	Err   error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("video registration failed for %s: %v", e.URL, e.Err)
}

func (e *RegistrationError) Unwrap() []error {
	return []error{ErrRegistrationFailed, e.Err}
}
