// Package codec сериализует произвольные объекты приложения в байты и обратно.
//
// Формат — поток encoding/gob с конвертом {Value any}: в слоте интерфейса
// передаётся имя конкретного типа, поэтому вложенные пользовательские типы
// восстанавливаются целиком. Каждый конкретный тип, который проходит через
// интерфейсное поле, должен быть зарегистрирован через Register.
//
// Совместимость с форматом других реализаций не поддерживается.
package codec
