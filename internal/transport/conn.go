package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Conn — одно websocket-соединение и его событийный цикл.
type Conn struct {
	ws   *websocket.Conn
	opts options
	log  *zap.Logger

	wmu sync.Mutex // сериализует запись в websocket

	events    chan event
	closing   chan struct{} // закрывается в Close
	done      chan struct{} // закрывается после OnClose
	closeOnce sync.Once
	closed    atomic.Bool

	tmu    sync.Mutex
	timers map[*time.Timer]struct{}

	errMu sync.Mutex
	err   error
}

// Dial устанавливает соединение, создаёт обработчик через factory
// и запускает чтение и событийный цикл.
func Dial(ctx context.Context, addr string, factory Factory, opts ...Option) (*Conn, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ws, _, err := o.dialer.DialContext(ctx, addr, o.header)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: dial %s", addr)
	}
	if o.readLimit > 0 {
		ws.SetReadLimit(o.readLimit)
	}

	c := &Conn{
		ws:      ws,
		opts:    o,
		log:     o.log.With(zap.String("addr", addr)),
		events:  make(chan event),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
		timers:  make(map[*time.Timer]struct{}),
	}
	h := factory(c)

	c.log.Debug("connected")
	go c.readLoop()
	go c.eventLoop(h)
	if o.pingInterval > 0 {
		go c.pingLoop()
	}
	return c, nil
}

// Send пишет текстовый кадр: мьютекс + write-deadline.
func (c *Conn) Send(text string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return errors.Wrap(err, "transport: send")
	}
	return nil
}

// Timeout взводит одноразовый таймер. Срабатывание придёт в цикл событий
// как OnTimeout(handle); после закрытия соединения таймеры гасятся.
func (c *Conn) Timeout(delay time.Duration, handle int) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.tmu.Lock()
	defer c.tmu.Unlock()
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		c.tmu.Lock()
		delete(c.timers, t)
		c.tmu.Unlock()
		c.post(event{kind: eventTimeout, handle: handle})
	})
	c.timers[t] = struct{}{}
	return nil
}

// Close мягко закрывает соединение. Повторный вызов ничего не делает.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.wmu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"),
			time.Now().Add(500*time.Millisecond))
		c.wmu.Unlock()
		close(c.closing)
	})
	return nil
}

// Done закрывается, когда соединение окончательно завершено.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err — причина завершения; nil при штатном закрытии.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Conn) setErr(err error) {
	c.errMu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.errMu.Unlock()
}

// shutdown вызывается из цикла событий один раз.
func (c *Conn) shutdown() {
	c.closed.Store(true)
	_ = c.ws.Close()

	c.tmu.Lock()
	for t := range c.timers {
		t.Stop()
	}
	c.timers = make(map[*time.Timer]struct{})
	c.tmu.Unlock()
}
