// Package sockjs разбирает и собирает текстовые кадры SockJS поверх
// "сырого" websocket: o / h / c[...] / m"..." / a[...].
package sockjs

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// префиксы кадров
const (
	frameOpen      byte = 'o'
	frameHeartbeat byte = 'h'
	frameClose     byte = 'c'
	frameMessage   byte = 'm'
	frameMessages  byte = 'a'
)

// EmptyFrame — пустой кадр, ответ на heartbeat. Уходит без обёртки.
const EmptyFrame = "[]"

var (
	ErrEmptyFrame  = errors.New("empty frame")
	ErrUnknownKind = errors.New("unknown frame prefix")
)

// Kind — тип входящего кадра.
type Kind int

const (
	KindOpen Kind = iota
	KindHeartbeat
	KindClose
	KindMessage
	KindMessages
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindHeartbeat:
		return "heartbeat"
	case KindClose:
		return "close"
	case KindMessage:
		return "message"
	case KindMessages:
		return "messages"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Message — одна полезная нагрузка приложения, как пришла.
type Message string

// Value разбирает сообщение как произвольное JSON-дерево.
// Семантику не трогаем: для "auth ok <token>" и прочего не-JSON вернётся ошибка.
func (m Message) Value() (*structpb.Value, error) {
	v := &structpb.Value{}
	if err := protojson.Unmarshal([]byte(m), v); err != nil {
		return nil, errors.Wrap(err, "sockjs: message is not json")
	}
	return v, nil
}

// Result — разобранный кадр. Для KindMessage в Messages ровно один элемент.
type Result struct {
	Kind     Kind
	Code     int
	Reason   string
	Messages []Message
}

// FrameError — кадр не разобрался; Raw хранит исходный текст для диагностики.
type FrameError struct {
	Raw string
	Err error
}

func (e *FrameError) Error() string {
	raw := e.Raw
	if len(raw) > 64 {
		raw = raw[:64] + "…"
	}
	return fmt.Sprintf("sockjs: malformed frame %q: %v", raw, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Parse классифицирует один текстовый кадр транспорта.
func Parse(text string) (Result, error) {
	if text == "" {
		return Result{}, &FrameError{Raw: text, Err: ErrEmptyFrame}
	}
	body := []byte(text[1:])

	switch text[0] {
	case frameOpen:
		return Result{Kind: KindOpen}, nil

	case frameHeartbeat:
		return Result{Kind: KindHeartbeat}, nil

	case frameClose:
		var parts []json.RawMessage
		if err := json.Unmarshal(body, &parts); err != nil {
			return Result{}, &FrameError{Raw: text, Err: errors.Wrap(err, "close body")}
		}
		if len(parts) != 2 {
			return Result{}, &FrameError{Raw: text, Err: errors.Errorf("close body: want [code, reason], got %d elements", len(parts))}
		}
		res := Result{Kind: KindClose}
		if err := json.Unmarshal(parts[0], &res.Code); err != nil {
			return Result{}, &FrameError{Raw: text, Err: errors.Wrap(err, "close code")}
		}
		if err := json.Unmarshal(parts[1], &res.Reason); err != nil {
			return Result{}, &FrameError{Raw: text, Err: errors.Wrap(err, "close reason")}
		}
		return res, nil

	case frameMessage:
		var s *string
		if err := json.Unmarshal(body, &s); err != nil {
			return Result{}, &FrameError{Raw: text, Err: errors.Wrap(err, "message body")}
		}
		if s == nil {
			return Result{}, &FrameError{Raw: text, Err: errors.New("message body: null")}
		}
		return Result{Kind: KindMessage, Messages: []Message{Message(*s)}}, nil

	case frameMessages:
		var list []string
		if err := json.Unmarshal(body, &list); err != nil {
			return Result{}, &FrameError{Raw: text, Err: errors.Wrap(err, "messages body")}
		}
		if list == nil {
			return Result{}, &FrameError{Raw: text, Err: errors.New("messages body: null")}
		}
		msgs := make([]Message, len(list))
		for i, s := range list {
			msgs[i] = Message(s)
		}
		return Result{Kind: KindMessages, Messages: msgs}, nil
	}

	return Result{}, &FrameError{Raw: text, Err: ErrUnknownKind}
}

// Encode оборачивает команду в JSON-массив из одной строки: ["<command>"].
// Другой формы исходящих кадров нет (кроме EmptyFrame).
func Encode(command string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([1]string{command}); err != nil {
		return "", errors.Wrap(err, "sockjs: encode command")
	}
	// Encoder дописывает '\n'
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
