package socket

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/EgorLis/screepsws/internal/observability"
	"github.com/EgorLis/screepsws/internal/sockjs"
	"github.com/EgorLis/screepsws/internal/token"
	"github.com/EgorLis/screepsws/internal/transport"
)

// session — обработчик одного соединения (transport.Handler).
// Все методы вызываются из горутины событий транспорта, блокировок нет.
type session struct {
	tokens     token.Storage
	handler    fullHandler
	sender     Sender
	retries    *retryTable
	loginRetry time.Duration
	authed     bool
	log        *zap.Logger
}

func newSession(out transport.Out, factory func(Sender) Handler, tokens token.Storage, o options) *session {
	sender := NewSender(out, o.log)
	return &session{
		tokens:     tokens,
		handler:    withDefaults(factory(sender), o.log),
		sender:     sender,
		retries:    newRetryTable(),
		loginRetry: o.loginRetry,
		log:        o.log,
	}
}

func (s *session) OnMessage(msg transport.Message) error {
	if !msg.IsText() {
		s.log.Error("socket: ignoring binary data received from websocket", zap.Int("bytes", len(msg.Data)))
		return nil
	}

	res, err := sockjs.Parse(string(msg.Data))
	if err != nil {
		s.handler.OnError(err)
		return nil
	}
	observability.RecordFrame(res.Kind.String())

	switch res.Kind {
	case sockjs.KindOpen:
		if err := s.tryOrRetryAuth(); err != nil {
			s.handler.OnError(err)
		}
	case sockjs.KindHeartbeat:
		if err := s.sender.SendEmptyFrame(); err != nil {
			return err
		}
	case sockjs.KindMessage, sockjs.KindMessages:
		for _, m := range res.Messages {
			s.observeAuthReply(m)
		}
	}

	return s.handler.OnCommunication(res)
}

func (s *session) OnError(err error) {
	s.handler.OnError(err)
}

func (s *session) OnTimeout(handle int) error {
	state, ok := s.retries.release(handle)
	if !ok {
		s.log.Debug("socket: timeout ignored: handle not known", zap.Int("handle", handle))
		observability.RecordRetry("", observability.RetryUnknown)
		return nil
	}
	return s.retry(state)
}

func (s *session) OnClose() {
	if err := s.handler.OnDisconnect(); err != nil {
		s.log.Warn("socket: disconnect handler failed", zap.Error(err))
	}
}

func (s *session) retry(state FailState) error {
	switch state {
	case FailLogin:
		if s.authed {
			// авторизовались другим путём, пока таймер ждал
			s.log.Debug("socket: stale login retry dropped")
			observability.RecordRetry(state.String(), observability.RetryStale)
			return nil
		}
		observability.RecordRetry(state.String(), observability.RetryRun)
		return s.tryOrRetryAuth()
	}
	return nil
}

// schedule занимает handle и взводит таймер транспорта. Если таймер не
// взвёлся, handle освобождается: в таблице нет записей без таймера.
func (s *session) schedule(state FailState, delay time.Duration) (int, error) {
	handle := s.retries.reserve(state)
	if err := s.sender.Out().Timeout(delay, handle); err != nil {
		s.retries.release(handle)
		return 0, errors.Wrapf(err, "socket: schedule %s retry", state)
	}
	observability.RecordRetry(state.String(), observability.RetryScheduled)
	s.log.Debug("socket: retry scheduled",
		zap.Stringer("state", state), zap.Int("handle", handle), zap.Duration("in", delay))
	return handle, nil
}

// tryOrRetryAuth забирает токен и авторизуется; нет токена — ErrUnauthorized
// в обработчик и повтор через loginRetry.
func (s *session) tryOrRetryAuth() error {
	tok, ok := s.tokens.Take()
	if !ok {
		observability.RecordAuth(observability.AuthUnauthorized)
		s.handler.OnError(ErrUnauthorized)
		_, err := s.schedule(FailLogin, s.loginRetry)
		return err
	}
	observability.RecordAuth(observability.AuthSent)
	return s.sender.authenticate(tok)
}

func (s *session) observeAuthReply(msg sockjs.Message) {
	ok, fresh, matched := parseAuthReply(msg)
	if !matched {
		return
	}
	if ok {
		s.authed = true
		observability.RecordAuth(observability.AuthOK)
		if fresh != "" {
			// токен ушёл через Take — возвращаем обновлённый для HTTP и следующих сессий
			s.tokens.Set(fresh)
		}
		s.log.Debug("socket: authenticated")
		return
	}

	s.authed = false
	observability.RecordAuth(observability.AuthFailed)
	s.handler.OnError(ErrAuthFailed)
	if _, err := s.schedule(FailLogin, s.loginRetry); err != nil {
		s.handler.OnError(err)
	}
}
