package events

import (
	"errors"
	"strings"
)

// Ошибки построения событий.
var (
	// ErrBuild — вложение не удалось построить из payload.
	ErrBuild = errors.New("event build failed")

	// ErrMissingAttachment — отсутствует обязательное вложение.
	ErrMissingAttachment = errors.New("required attachment is missing")

	// ErrUnknownAttachment — вариант события не принимает этот вид вложения.
	ErrUnknownAttachment = errors.New("attachment kind not allowed for event")

	// ErrAttachmentExists — вложение этого вида уже прикреплено.
	ErrAttachmentExists = errors.New("attachment already set")
)

// BuildError — ошибка построения события с контекстом.
type BuildError struct {
	Event      string // вариант события (VkEvent, Punishment)
	Attachment Kind   // вложение, на котором произошла ошибка
	Err        error  // исходная ошибка
}

// Error реализует интерфейс error.
func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString("build ")
	b.WriteString(e.Event)
	if e.Attachment != "" {
		b.WriteString(": ")
		b.WriteString(string(e.Attachment))
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap возвращает ErrBuild и исходную ошибку.
func (e *BuildError) Unwrap() []error {
	return []error{ErrBuild, e.Err}
}
