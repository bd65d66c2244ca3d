// Package events описывает события, которыми обмениваются боты через брокер.
//
// Событие — вариант суммы (VkEvent, Punishment) с обязательными
// полями идентичности и набором вложений: Peer, User, Message, Button,
// Reaction, Warn, Unwarn, Kick. Имя вложения берётся из закрытого
// перечисления Kind; каждый вариант принимает только свои виды.
//
// Вложения строятся билдером из сырых payload'ов входящего фида:
// поля сопоставляются по ключам (тег `payload`), недостающее или
// лишнее поле — ошибка построения. Событие либо строится целиком,
// либо не строится вовсе.
//
// Все типы пакета регистрируются в codec при инициализации.
package events
