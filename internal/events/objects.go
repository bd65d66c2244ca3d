package events

// Payload — сырой payload входящего фида: имя поля → значение.
type Payload = map[string]any

// Kind — имя вложения события.
type Kind string

// Виды вложений.
const (
	KindPeer     Kind = "peer"
	KindUser     Kind = "user"
	KindMessage  Kind = "message"
	KindButton   Kind = "button"
	KindReaction Kind = "reaction"
	KindWarn     Kind = "warn"
	KindUnwarn   Kind = "unwarn"
	KindKick     Kind = "kick"
)

// Valid проверяет, что вид входит в перечисление.
func (k Kind) Valid() bool {
	switch k {
	case KindPeer, KindUser, KindMessage, KindButton, KindReaction, KindWarn, KindUnwarn, KindKick:
		return true
	default:
		return false
	}
}

// Attachment — вложение события. Реализуется только типами этого пакета.
type Attachment interface {
	Kind() Kind
	attachment()
}

// Peer — беседа, в которой произошло событие.
type Peer struct {
	BotPeerID int64  `payload:"bpid"`
	ChatID    int64  `payload:"cid"`
	Name      string `payload:"name"`
}

// User — пользователь, вызвавший событие.
type User struct {
	ID        int64  `payload:"uuid"`
	Name      string `payload:"name"`
	FirstName string `payload:"firstname"`
	LastName  string `payload:"lastname"`
	Nick      string `payload:"nick"`
}

// Message — сообщение с ответом и пересланными сообщениями.
//
// Reply и Forward не читаются из payload сообщения: билдер собирает
// их из message_reply и message_forward.
type Message struct {
	ConvMsgID   int64
	Text        string
	Reply       *Reply
	Forward     []Reply
	Attachments []string
}

// Reply — сообщение, на которое ответили или которое переслали.
type Reply struct {
	UserID    int64  `payload:"uuid"`
	ConvMsgID int64  `payload:"cmid"`
	Text      string `payload:"text"`
}

// Reaction — реакция на сообщение.
type Reaction struct {
	ConvMsgID  int64 `payload:"cmid"`
	ReactionID int64 `payload:"rid"`
}

// Button — нажатие callback-кнопки.
type Button struct {
	ConvMsgID     int64   `payload:"cmid"`
	ButtonEventID string  `payload:"beid"`
	Payload       Payload `payload:"payload"`
}

// Warn — выдача предупреждений.
type Warn struct {
	Points int `payload:"points"`
}

// Unwarn — снятие предупреждений. Та же форма, что у Warn.
type Unwarn struct {
	Points int `payload:"points"`
}

// Kick — исключение пользователя.
type Kick struct {
	Mode string `payload:"mode"`
}

func (Peer) Kind() Kind     { return KindPeer }
func (User) Kind() Kind     { return KindUser }
func (Message) Kind() Kind  { return KindMessage }
func (Button) Kind() Kind   { return KindButton }
func (Reaction) Kind() Kind { return KindReaction }
func (Warn) Kind() Kind     { return KindWarn }
func (Unwarn) Kind() Kind   { return KindUnwarn }
func (Kick) Kind() Kind     { return KindKick }

func (Peer) attachment()     {}
func (User) attachment()     {}
func (Message) attachment()  {}
func (Button) attachment()   {}
func (Reaction) attachment() {}
func (Warn) attachment()     {}
func (Unwarn) attachment()   {}
func (Kick) attachment()     {}
