package socket

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/EgorLis/screepsws/internal/token"
	"github.com/EgorLis/screepsws/internal/transport"
)

// DefaultLoginRetry — через сколько повторить авторизацию без токена.
const DefaultLoginRetry = 15 * time.Second

type options struct {
	log        *zap.Logger
	loginRetry time.Duration
	transport  []transport.Option
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func WithLoginRetry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.loginRetry = d
		}
	}
}

// WithTransport передаёт опции транспорту (ping, заголовки, dialer).
func WithTransport(opts ...transport.Option) Option {
	return func(o *options) { o.transport = append(o.transport, opts...) }
}

// Connect подключается к сокету Screeps. factory вызывается один раз на
// соединение и получает Sender этого соединения. tokens — общий слот токена,
// тот же, что у HTTP-клиента.
//
// Переподключения нет: после закрытия нужно вызвать Connect снова.
func Connect(ctx context.Context, address string, factory func(Sender) Handler, tokens token.Storage, opts ...Option) (*transport.Conn, error) {
	if factory == nil {
		return nil, errors.New("socket: nil handler factory")
	}
	if tokens == nil {
		return nil, errors.New("socket: nil token storage")
	}

	o := options{log: zap.NewNop(), loginRetry: DefaultLoginRetry}
	for _, opt := range opts {
		opt(&o)
	}

	topts := append([]transport.Option{transport.WithLogger(o.log)}, o.transport...)
	return transport.Dial(ctx, address, func(out transport.Out) transport.Handler {
		return newSession(out, factory, tokens, o)
	}, topts...)
}

// URL выводит адрес сокета из базового адреса API:
// https://screeps.com/api/ -> wss://screeps.com/socket/websocket,
// https://screeps.com/season/api/ -> wss://screeps.com/season/socket/websocket.
func URL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", errors.Wrapf(err, "socket: bad api url %q", apiURL)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", errors.Errorf("socket: unsupported scheme in %q", apiURL)
	}
	if u.Host == "" {
		return "", errors.Errorf("socket: no host in %q", apiURL)
	}
	p := strings.TrimSuffix(u.Path, "/")
	p = strings.TrimSuffix(p, "/api")
	u.Path = p + "/socket/websocket"
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
