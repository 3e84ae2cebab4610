package socket

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/EgorLis/screepsws/internal/sockjs"
	"github.com/EgorLis/screepsws/internal/token"
	"github.com/EgorLis/screepsws/internal/transport"
)

// Sender — исходящие команды протокола. Копируется свободно; безопасен
// для одновременного использования, запись сериализует транспорт.
// Успех значит "отдано транспорту", а не "сервер принял".
type Sender struct {
	out transport.Out
	log *zap.Logger
}

func NewSender(out transport.Out, log *zap.Logger) Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return Sender{out: out, log: log}
}

// Out — транспорт под Sender'ом (таймеры, Close).
func (s Sender) Out() transport.Out { return s.out }

func (s Sender) authenticate(tok token.Token) error {
	return s.send("auth "+string(tok), "auth "+tok.Redacted())
}

// Subscribe подписывает на канал. Повторная подписка — на усмотрение сервера,
// список своих подписок лучше вести отдельно.
func (s Sender) Subscribe(ch Channel) error {
	return s.SendRaw("subscribe " + ch.Topic())
}

// Unsubscribe отписывает от канала.
func (s Sender) Unsubscribe(ch Channel) error {
	return s.SendRaw("unsubscribe " + ch.Topic())
}

// SetGzip просит сервер сжимать (или не сжимать) данные подписок.
func (s Sender) SetGzip(on bool) error {
	if on {
		return s.SendRaw("gzip on")
	}
	return s.SendRaw("gzip off")
}

// SendEmptyFrame шлёт пустой кадр "[]" без обёртки (ответ на heartbeat).
func (s Sender) SendEmptyFrame() error {
	s.log.Debug("sockjs: sending empty frame")
	if err := s.out.Send(sockjs.EmptyFrame); err != nil {
		return errors.Wrap(err, "socket: send empty frame")
	}
	return nil
}

// SendRaw шлёт произвольную команду, обёрнутую в ["<command>"].
func (s Sender) SendRaw(command string) error {
	return s.send(command, command)
}

// shown — что писать в лог вместо команды (токен не светим).
func (s Sender) send(command, shown string) error {
	frame, err := sockjs.Encode(command)
	if err != nil {
		return err
	}
	s.log.Debug("sockjs: sending frame", zap.String("command", shown))
	if err := s.out.Send(frame); err != nil {
		return errors.Wrapf(err, "socket: send %q", shown)
	}
	return nil
}
