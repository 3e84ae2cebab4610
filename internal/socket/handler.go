package socket

import (
	"go.uber.org/zap"

	"github.com/EgorLis/screepsws/internal/sockjs"
)

// Handler — обработчик сокет-клиента. Обязателен только OnMessage,
// остальные колбэки подхватываются, если тип их реализует.
type Handler interface {
	OnMessage(msg sockjs.Message) error
}

// CommunicationHandler получает каждый разобранный кадр, включая open,
// heartbeat и close. Без него работает Dispatch.
type CommunicationHandler interface {
	OnCommunication(res sockjs.Result) error
}

// ErrorHandler получает ошибки разбора кадров, ErrUnauthorized,
// ErrAuthFailed и ошибки сокета. Без него ошибки пишутся в лог.
type ErrorHandler interface {
	OnError(err error)
}

// DisconnectHandler вызывается один раз после закрытия соединения.
type DisconnectHandler interface {
	OnDisconnect() error
}

// HandlerFunc превращает функцию в Handler.
type HandlerFunc func(msg sockjs.Message) error

func (f HandlerFunc) OnMessage(msg sockjs.Message) error { return f(msg) }

// Dispatch — OnCommunication по умолчанию: сообщения по одному в OnMessage
// в порядке батча; первая ошибка прерывает батч и возвращается.
// Open, heartbeat и close игнорируются.
func Dispatch(h Handler, res sockjs.Result) error {
	switch res.Kind {
	case sockjs.KindMessage, sockjs.KindMessages:
		for _, msg := range res.Messages {
			if err := h.OnMessage(msg); err != nil {
				return err
			}
		}
	}
	return nil
}

// fullHandler дополняет пользовательский Handler поведением по умолчанию.
type fullHandler struct {
	h   Handler
	log *zap.Logger
}

func withDefaults(h Handler, log *zap.Logger) fullHandler {
	if h == nil {
		h = HandlerFunc(func(sockjs.Message) error { return nil })
	}
	return fullHandler{h: h, log: log}
}

func (f fullHandler) OnMessage(msg sockjs.Message) error { return f.h.OnMessage(msg) }

func (f fullHandler) OnCommunication(res sockjs.Result) error {
	if ch, ok := f.h.(CommunicationHandler); ok {
		return ch.OnCommunication(res)
	}
	switch res.Kind {
	case sockjs.KindMessage:
		f.log.Debug("socket: received single SockJS message")
	case sockjs.KindMessages:
		f.log.Debug("socket: received SockJS message batch", zap.Int("count", len(res.Messages)))
	case sockjs.KindHeartbeat:
		f.log.Debug("socket: received SockJS heartbeat")
	case sockjs.KindOpen:
		f.log.Debug("socket: received SockJS open")
	case sockjs.KindClose:
		f.log.Debug("socket: received SockJS close", zap.Int("code", res.Code), zap.String("reason", res.Reason))
	}
	return Dispatch(f.h, res)
}

func (f fullHandler) OnError(err error) {
	if eh, ok := f.h.(ErrorHandler); ok {
		eh.OnError(err)
		return
	}
	f.log.Warn("socket: error not handled by handler", zap.Error(err))
}

func (f fullHandler) OnDisconnect() error {
	if dh, ok := f.h.(DisconnectHandler); ok {
		return dh.OnDisconnect()
	}
	return nil
}
