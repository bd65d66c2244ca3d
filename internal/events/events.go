package events

import (
	"fmt"
	"slices"

	"github.com/shaiso/funckabots/internal/codec"
)

func init() {
	codec.Register(
		&VkEvent{},
		&Punishment{},
		Peer{},
		User{},
		Message{},
		Reply{},
		Reaction{},
		Button{},
		Warn{},
		Unwarn{},
		Kick{},
	)
}

// Event — событие бота.
type Event interface {
	fmt.Stringer

	// Name возвращает имя варианта (VkEvent, Punishment).
	Name() string

	// Get возвращает вложение вида kind.
	Get(kind Kind) (Attachment, bool)

	// Kinds возвращает виды прикреплённых вложений в алфавитном порядке.
	Kinds() []Kind

	// AsMap возвращает представление события для логов.
	AsMap() map[string]any

	// Dispose удаляет все вложения.
	Dispose()

	// Allows сообщает, принимает ли вариант вложение вида kind.
	Allows(kind Kind) bool
}

// Lookup возвращает вложение типа T, если оно прикреплено к событию.
//
//	msg, ok := events.Lookup[events.Message](ev)
func Lookup[T Attachment](ev Event) (T, bool) {
	var zero T

	v, ok := ev.Get(zero.Kind())
	if !ok {
		return zero, false
	}

	out, ok := v.(T)
	return out, ok
}

// Validate проверяет, что у события есть обязательные вложения peer и user.
func Validate(ev Event) error {
	for _, kind := range []Kind{KindPeer, KindUser} {
		if _, ok := ev.Get(kind); !ok {
			return &BuildError{Event: ev.Name(), Attachment: kind, Err: ErrMissingAttachment}
		}
	}
	return nil
}

// Attachments — вложения события по виду.
type Attachments map[Kind]Attachment

// Get возвращает вложение вида kind.
func (a Attachments) Get(kind Kind) (Attachment, bool) {
	v, ok := a[kind]
	return v, ok
}

// Kinds возвращает виды вложений в алфавитном порядке.
func (a Attachments) Kinds() []Kind {
	kinds := make([]Kind, 0, len(a))
	for k := range a {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// attach прикрепляет вложение, если вариант его принимает и оно ещё не задано.
func (a *Attachments) attach(event string, allowed []Kind, v Attachment) error {
	kind := v.Kind()
	if !kind.Valid() || !slices.Contains(allowed, kind) {
		return &BuildError{Event: event, Attachment: kind, Err: ErrUnknownAttachment}
	}

	if *a == nil {
		*a = make(Attachments, len(allowed))
	}
	if _, ok := (*a)[kind]; ok {
		return &BuildError{Event: event, Attachment: kind, Err: ErrAttachmentExists}
	}

	(*a)[kind] = v
	return nil
}

// fill дописывает вложения в представление для логов.
func (a Attachments) fill(m map[string]any) map[string]any {
	for k, v := range a {
		m[string(k)] = v
	}
	return m
}

// Виды вложений, которые принимают варианты.
var (
	vkEventKinds    = []Kind{KindPeer, KindUser, KindMessage, KindButton, KindReaction}
	punishmentKinds = []Kind{KindPeer, KindUser, KindMessage, KindWarn, KindUnwarn, KindKick}
)

// VkEvent — событие ВКонтакте.
//
// Всегда содержит peer и user; в зависимости от типа события —
// message, button, reaction.
type VkEvent struct {
	EventType   string
	EventID     string
	Attachments Attachments
}

// Name возвращает имя варианта.
func (e *VkEvent) Name() string { return "VkEvent" }

// String реализует fmt.Stringer.
func (e *VkEvent) String() string {
	return fmt.Sprintf("VkEvent<type: %s | id: %s>", e.EventType, e.EventID)
}

func (e *VkEvent) Get(kind Kind) (Attachment, bool) { return e.Attachments.Get(kind) }
func (e *VkEvent) Kinds() []Kind                    { return e.Attachments.Kinds() }
func (e *VkEvent) Allows(kind Kind) bool            { return slices.Contains(vkEventKinds, kind) }
func (e *VkEvent) Dispose()                         { e.Attachments = nil }

// AsMap возвращает представление события для логов.
func (e *VkEvent) AsMap() map[string]any {
	return e.Attachments.fill(map[string]any{
		"event_type": e.EventType,
		"event_id":   e.EventID,
	})
}

func (e *VkEvent) attach(v Attachment) error {
	return e.Attachments.attach(e.Name(), vkEventKinds, v)
}

// Punishment — внутреннее событие для сервиса наказаний.
//
// Всегда содержит peer и user (цель наказания); в зависимости от
// наказания — message, warn, unwarn, kick.
type Punishment struct {
	PunishmentType string
	Comment        string
	Attachments    Attachments
}

// Name возвращает имя варианта.
func (e *Punishment) Name() string { return "Punishment" }

// String реализует fmt.Stringer.
func (e *Punishment) String() string {
	return fmt.Sprintf("Punishment<type: %s | comment: %s>", e.PunishmentType, e.Comment)
}

func (e *Punishment) Get(kind Kind) (Attachment, bool) { return e.Attachments.Get(kind) }
func (e *Punishment) Kinds() []Kind                    { return e.Attachments.Kinds() }
func (e *Punishment) Allows(kind Kind) bool            { return slices.Contains(punishmentKinds, kind) }
func (e *Punishment) Dispose()                         { e.Attachments = nil }

// AsMap возвращает представление события для логов.
func (e *Punishment) AsMap() map[string]any {
	return e.Attachments.fill(map[string]any{
		"punishment_type": e.PunishmentType,
		"comment":         e.Comment,
	})
}

func (e *Punishment) attach(v Attachment) error {
	return e.Attachments.attach(e.Name(), punishmentKinds, v)
}
