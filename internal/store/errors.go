package store

import "errors"

// ErrScript — unit of work завершился ошибкой, транзакция откачена.
var ErrScript = errors.New("script failed")

// ScriptError — ошибка Script с именем скрипта и этапом.
type ScriptError struct {
	Name string // имя скрипта для логов
	Op   string // begin, run, commit
	Err  error
}

// Error реализует интерфейс error.
func (e *ScriptError) Error() string {
	return "script " + e.Name + ": " + e.Op + ": " + e.Err.Error()
}

// Unwrap возвращает ErrScript и исходную ошибку.
func (e *ScriptError) Unwrap() []error {
	return []error{ErrScript, e.Err}
}
