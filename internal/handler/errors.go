package handler

import "errors"

// Ошибки обработки событий.
var (
	// ErrNoHandler — для варианта события не зарегистрирован обработчик.
	ErrNoHandler = errors.New("no handler for event")

	// ErrHandlerPanic — обработчик завершился паникой.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrInvalidEvent — событие без обязательных вложений.
	ErrInvalidEvent = errors.New("invalid event")
)
