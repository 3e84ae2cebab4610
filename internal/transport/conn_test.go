package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// recorder складывает события в каналы; колбэки могут переопределяться.
type recorder struct {
	out      Out
	messages chan Message
	timeouts chan int
	errs     chan error
	closes   atomic.Int32
	closed   chan struct{}

	onMessage func(Message) error
}

func newRecorder(out Out) *recorder {
	return &recorder{
		out:      out,
		messages: make(chan Message, 16),
		timeouts: make(chan int, 16),
		errs:     make(chan error, 16),
		closed:   make(chan struct{}),
	}
}

func (r *recorder) OnMessage(msg Message) error {
	r.messages <- msg
	if r.onMessage != nil {
		return r.onMessage(msg)
	}
	return nil
}

func (r *recorder) OnError(err error) { r.errs <- err }

func (r *recorder) OnTimeout(handle int) error {
	r.timeouts <- handle
	return nil
}

func (r *recorder) OnClose() {
	if r.closes.Add(1) == 1 {
		close(r.closed)
	}
}

// echoServer отдаёт клиенту кадры из script и пересылает всё полученное в got.
func echoServer(t *testing.T, script []string, got chan<- string) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for _, s := range script {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(s)); err != nil {
				return
			}
		}
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			got <- string(data)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatalf("timeout waiting for %s", what)
	}
	var zero T
	return zero
}

func TestDialDeliversMessagesInOrderAndSends(t *testing.T) {
	got := make(chan string, 16)
	srv := echoServer(t, []string{"o", "h", `a["x"]`}, got)

	var rec *recorder
	conn, err := Dial(context.Background(), wsURL(srv), func(out Out) Handler {
		rec = newRecorder(out)
		rec.onMessage = func(m Message) error {
			if string(m.Data) == "h" {
				return out.Send("[]")
			}
			return nil
		}
		return rec
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	for _, want := range []string{"o", "h", `a["x"]`} {
		m := waitFor(t, rec.messages, want)
		if !m.IsText() || string(m.Data) != want {
			t.Fatalf("message mismatch: got=%q want=%q", m.Data, want)
		}
	}
	if reply := waitFor(t, got, "heartbeat reply"); reply != "[]" {
		t.Fatalf("reply=%q", reply)
	}

	if err := conn.Send(`["subscribe room:E1N1"]`); err != nil {
		t.Fatalf("send: %v", err)
	}
	if s := waitFor(t, got, "subscribe"); s != `["subscribe room:E1N1"]` {
		t.Fatalf("server got %q", s)
	}
}

func TestTimeoutFiresOnEventLoop(t *testing.T) {
	srv := echoServer(t, nil, make(chan string, 16))

	var rec *recorder
	conn, err := Dial(context.Background(), wsURL(srv), func(out Out) Handler {
		rec = newRecorder(out)
		return rec
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.Timeout(10*time.Millisecond, 3); err != nil {
		t.Fatalf("timeout: %v", err)
	}
	if err := conn.Timeout(0, 0); err != nil {
		t.Fatalf("timeout: %v", err)
	}
	seen := map[int]bool{}
	seen[waitFor(t, rec.timeouts, "timer")] = true
	seen[waitFor(t, rec.timeouts, "timer")] = true
	if !seen[0] || !seen[3] {
		t.Fatalf("timers fired: %v", seen)
	}
}

func TestHandlerErrorClosesConnection(t *testing.T) {
	srv := echoServer(t, []string{"o"}, make(chan string, 16))
	boom := errors.New("boom")

	var rec *recorder
	conn, err := Dial(context.Background(), wsURL(srv), func(out Out) Handler {
		rec = newRecorder(out)
		rec.onMessage = func(Message) error { return boom }
		return rec
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	if e := waitFor(t, rec.errs, "handler error"); !errors.Is(e, boom) {
		t.Fatalf("OnError got %v", e)
	}
	waitFor(t, conn.Done(), "done")
	if !errors.Is(conn.Err(), boom) {
		t.Fatalf("conn.Err()=%v", conn.Err())
	}
	if rec.closes.Load() != 1 {
		t.Fatalf("OnClose called %d times", rec.closes.Load())
	}
	if err := conn.Send("x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("send after close: %v", err)
	}
	if err := conn.Timeout(time.Millisecond, 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("timeout after close: %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := echoServer(t, nil, make(chan string, 16))

	var rec *recorder
	conn, err := Dial(context.Background(), wsURL(srv), func(out Out) Handler {
		rec = newRecorder(out)
		return rec
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	// таймер, который не должен успеть
	_ = conn.Timeout(time.Hour, 7)

	_ = conn.Close()
	_ = conn.Close()
	waitFor(t, rec.closed, "OnClose")
	waitFor(t, conn.Done(), "done")

	if rec.closes.Load() != 1 {
		t.Fatalf("OnClose called %d times", rec.closes.Load())
	}
	if conn.Err() != nil {
		t.Fatalf("clean close reported %v", conn.Err())
	}
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/none", func(out Out) Handler { return newRecorder(out) })
	if err == nil {
		t.Fatalf("expected dial error")
	}
}
