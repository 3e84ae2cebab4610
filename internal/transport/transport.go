package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("transport: connection closed")

// Message — один кадр websocket как есть.
type Message struct {
	Type int
	Data []byte
}

// IsText — текстовый ли кадр (websocket.TextMessage).
func (m Message) IsText() bool { return m.Type == websocket.TextMessage }

// Out — то, что обработчик может делать с соединением.
type Out interface {
	// Send ставит текстовый кадр в сокет. Безопасно из любых горутин.
	Send(text string) error
	// Timeout взводит одноразовый таймер; по срабатыванию вызовется
	// Handler.OnTimeout(handle). Отмены нет.
	Timeout(delay time.Duration, handle int) error
	Close() error
}

// Handler получает события соединения. Все методы вызываются из одной
// горутины, по очереди. Ошибка из OnMessage/OnTimeout закрывает соединение.
type Handler interface {
	OnMessage(msg Message) error
	OnError(err error)
	OnTimeout(handle int) error
	OnClose()
}

// Factory создаёт обработчик для нового соединения.
type Factory func(out Out) Handler

type options struct {
	dialer       *websocket.Dialer
	header       http.Header
	pingInterval time.Duration
	writeWait    time.Duration
	readLimit    int64
	log          *zap.Logger
}

func defaultOptions() options {
	return options{
		dialer:    websocket.DefaultDialer,
		writeWait: 5 * time.Second,
		readLimit: 64 << 20,
		log:       zap.NewNop(),
	}
}

type Option func(*options)

func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

func WithHeader(h http.Header) Option {
	return func(o *options) { o.header = h }
}

// WithPingInterval включает websocket ping; 0 — выключено.
func WithPingInterval(d time.Duration) Option {
	return func(o *options) { o.pingInterval = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.writeWait = d
		}
	}
}

func WithReadLimit(n int64) Option {
	return func(o *options) { o.readLimit = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
