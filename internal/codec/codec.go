package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"strings"
)

// ContentType — MIME-тип тела сообщения, закодированного этим пакетом.
const ContentType = "application/x-gob"

// envelope — конверт, в интерфейсном поле которого gob передаёт
// имя конкретного типа вместе со значением.
type envelope struct {
	Value any
}

func init() {
	Register(
		map[string]any{},
		[]any{},
		map[string]string{},
	)
}

// Register регистрирует конкретные типы, которые могут передаваться
// через Encode/Decode. Повторная регистрация того же типа безопасна.
//
// Регистрировать нужно каждый конкретный тип, попадающий в интерфейсное
// поле: сам объект, элементы []any и значения map[string]any. Без
// регистрации Encode вернёт ErrUnregisteredType, например для
// map[string]int. Типы регистрируются одинаково и у публикующего, и у
// читающего процесса, иначе Decode не восстановит значение.
func Register(values ...any) {
	for _, v := range values {
		gob.Register(v)
	}
}

// Encode сериализует объект вместе с его типом.
func Encode(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value", ErrEncode)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(envelope{Value: v}); err != nil {
		if strings.Contains(err.Error(), "type not registered") {
			return nil, fmt.Errorf("%w: %T: %w", ErrEncode, v, ErrUnregisteredType)
		}
		return nil, fmt.Errorf("%w: %T: %w", ErrEncode, v, err)
	}

	return buf.Bytes(), nil
}

// Decode восстанавливает объект, записанный Encode.
func Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrDecode)
	}

	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		if strings.Contains(err.Error(), "name not registered") {
			return nil, fmt.Errorf("%w: %w: %w", ErrDecode, ErrUnregisteredType, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return env.Value, nil
}

// DecodeAs восстанавливает объект и приводит его к типу T.
func DecodeAs[T any](data []byte) (T, error) {
	var zero T

	v, err := Decode(data)
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrDecode, v, zero)
	}
	return out, nil
}
