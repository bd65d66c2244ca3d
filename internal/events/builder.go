package events

import (
	"maps"

	"github.com/go-viper/mapstructure/v2"
)

// VkEventPayloads — сырые payload'ы входящего события ВКонтакте.
//
// Peer и User обязательны. Остальные пропускаются, если равны nil.
// MessageReply и MessageForward вливаются в Message и без него
// игнорируются.
type VkEventPayloads struct {
	Peer           Payload
	User           Payload
	Message        Payload
	MessageReply   Payload
	MessageForward []Payload
	Button         Payload
	Reaction       Payload
}

// PunishmentPayloads — сырые payload'ы события наказания.
type PunishmentPayloads struct {
	Peer           Payload
	User           Payload
	Message        Payload
	MessageReply   Payload
	MessageForward []Payload
	Warn           Payload
	Unwarn         Payload
	Kick           Payload
}

// BuildVkEvent собирает VkEvent из сырых payload'ов.
// При любой ошибке событие не возвращается.
func BuildVkEvent(eventType, eventID string, p VkEventPayloads) (*VkEvent, error) {
	ev := &VkEvent{EventType: eventType, EventID: eventID}

	b := builder{event: ev.Name(), attach: ev.attach}
	b.required(KindPeer, p.Peer, decodePeer)
	b.required(KindUser, p.User, decodeUser)
	b.message(p.Message, p.MessageReply, p.MessageForward)
	b.optional(KindButton, p.Button, decodeButton)
	b.optional(KindReaction, p.Reaction, decodeReaction)

	if b.err != nil {
		return nil, b.err
	}
	return ev, nil
}

// BuildPunishment собирает Punishment из сырых payload'ов.
// При любой ошибке событие не возвращается.
func BuildPunishment(punishmentType, comment string, p PunishmentPayloads) (*Punishment, error) {
	ev := &Punishment{PunishmentType: punishmentType, Comment: comment}

	b := builder{event: ev.Name(), attach: ev.attach}
	b.required(KindPeer, p.Peer, decodePeer)
	b.required(KindUser, p.User, decodeUser)
	b.message(p.Message, p.MessageReply, p.MessageForward)
	b.optional(KindWarn, p.Warn, decodeWarn)
	b.optional(KindUnwarn, p.Unwarn, decodeUnwarn)
	b.optional(KindKick, p.Kick, decodeKick)

	if b.err != nil {
		return nil, b.err
	}
	return ev, nil
}

type decodeFunc func(Payload) (Attachment, error)

// builder запоминает первую ошибку; после неё все шаги пропускаются.
type builder struct {
	event  string
	attach func(Attachment) error
	err    error
}

func (b *builder) required(kind Kind, raw Payload, decode decodeFunc) {
	if b.err != nil {
		return
	}
	if raw == nil {
		b.err = &BuildError{Event: b.event, Attachment: kind, Err: ErrMissingAttachment}
		return
	}
	b.add(kind, raw, decode)
}

func (b *builder) optional(kind Kind, raw Payload, decode decodeFunc) {
	if b.err != nil || raw == nil {
		return
	}
	b.add(kind, raw, decode)
}

func (b *builder) add(kind Kind, raw Payload, decode decodeFunc) {
	v, err := decode(raw)
	if err != nil {
		b.err = &BuildError{Event: b.event, Attachment: kind, Err: err}
		return
	}
	if err := b.attach(v); err != nil {
		b.err = err
	}
}

// message собирает Message, вливая в него ответ и пересланные сообщения.
func (b *builder) message(raw, reply Payload, forward []Payload) {
	if b.err != nil || raw == nil {
		return
	}

	// reply и forward берутся только из message_reply и message_forward
	raw = maps.Clone(raw)
	delete(raw, "reply")
	delete(raw, "forward")

	var fields messageFields
	if err := decodePayload(raw, &fields); err != nil {
		b.err = &BuildError{Event: b.event, Attachment: KindMessage, Err: err}
		return
	}

	msg := Message{
		ConvMsgID:   fields.ConvMsgID,
		Text:        fields.Text,
		Attachments: nilIfEmpty(fields.Attachments),
	}

	if reply != nil {
		var r Reply
		if err := decodePayload(reply, &r); err != nil {
			b.err = &BuildError{Event: b.event, Attachment: KindMessage, Err: err}
			return
		}
		msg.Reply = &r
	}

	for _, raw := range forward {
		var r Reply
		if err := decodePayload(raw, &r); err != nil {
			b.err = &BuildError{Event: b.event, Attachment: KindMessage, Err: err}
			return
		}
		msg.Forward = append(msg.Forward, r)
	}

	if err := b.attach(msg); err != nil {
		b.err = err
	}
}

// messageFields — поля payload'а message без reply и forward.
type messageFields struct {
	ConvMsgID   int64    `payload:"cmid"`
	Text        string   `payload:"text"`
	Attachments []string `payload:"attachments"`
}

// decodePayload раскладывает сырой payload по полям структуры.
// Неизвестные и отсутствующие ключи — ошибка.
func decodePayload(raw Payload, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "payload",
		ErrorUnused:      true,
		ErrorUnset:       true,
		WeaklyTypedInput: true,
		MatchName:        func(key, field string) bool { return key == field },
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func decodeAs[T Attachment](raw Payload) (Attachment, error) {
	var v T
	if err := decodePayload(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var (
	decodePeer     decodeFunc = decodeAs[Peer]
	decodeUser     decodeFunc = decodeAs[User]
	decodeButton   decodeFunc = decodeAs[Button]
	decodeReaction decodeFunc = decodeAs[Reaction]
	decodeWarn     decodeFunc = decodeAs[Warn]
	decodeUnwarn   decodeFunc = decodeAs[Unwarn]
	decodeKick     decodeFunc = decodeAs[Kick]
)

// gob не передаёт пустые срезы, поэтому пустое значение всегда nil.
func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
