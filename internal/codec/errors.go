package codec

import "errors"

// Ошибки кодека.
var (
	// ErrEncode — объект не удалось сериализовать.
	ErrEncode = errors.New("encode failed")

	// ErrDecode — байты не удалось восстановить в объект.
	ErrDecode = errors.New("decode failed")

	// ErrUnregisteredType — конкретный тип не зарегистрирован через Register.
	ErrUnregisteredType = errors.New("type not registered")
)
