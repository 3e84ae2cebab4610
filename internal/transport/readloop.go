package transport

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type eventKind int

const (
	eventMessage eventKind = iota
	eventError
	eventTimeout
	eventEnd
)

type event struct {
	kind   eventKind
	msg    Message
	err    error
	handle int
}

// post отдаёт событие в цикл; false — цикл уже завершён.
func (c *Conn) post(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *Conn) readLoop() {
	for {
		typ, data, err := c.ws.ReadMessage()
		if err != nil {
			if !c.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.post(event{kind: eventError, err: err})
			}
			c.post(event{kind: eventEnd})
			return
		}
		if !c.post(event{kind: eventMessage, msg: Message{Type: typ, Data: data}}) {
			return
		}
	}
}

// eventLoop — единственная горутина, которая трогает Handler.
func (c *Conn) eventLoop(h Handler) {
	defer func() {
		c.shutdown()
		h.OnClose()
		c.log.Debug("disconnected", zap.Error(c.Err()))
		close(c.done)
	}()

	for {
		select {
		case <-c.closing:
			return
		case ev := <-c.events:
			var err error
			switch ev.kind {
			case eventMessage:
				err = h.OnMessage(ev.msg)
			case eventTimeout:
				err = h.OnTimeout(ev.handle)
			case eventError:
				c.setErr(ev.err)
				h.OnError(ev.err)
			case eventEnd:
				return
			}
			if err != nil {
				// ошибка обработчика фатальна для соединения
				c.setErr(err)
				h.OnError(err)
				return
			}
		}
	}
}

func (c *Conn) pingLoop() {
	t := time.NewTicker(c.opts.pingInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.wmu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.opts.writeWait))
			c.wmu.Unlock()
			if err != nil {
				c.log.Debug("ping failed", zap.Error(err))
			}
		case <-c.done:
			return
		}
	}
}
