// Package token хранит токен авторизации Screeps, общий для сокет-сессии
// и HTTP-клиента (internal/api).
package token

import "sync"

// Token — непрозрачный токен авторизации. Копируется по значению.
type Token string

// Redacted — укороченная форма для логов, полный токен никогда не логируем.
func (t Token) Redacted() string {
	if len(t) <= 6 {
		return "…"
	}
	return string(t[:6]) + "…"
}

// Storage — общий слот для токена.
// Set: последний писатель выигрывает. Take: атомарно читает и очищает слот,
// чтобы один и тот же токен не ушёл в две попытки авторизации сразу.
type Storage interface {
	Get() (Token, bool)
	Set(Token)
	Take() (Token, bool)
}

// Slot — потокобезопасная реализация Storage на мьютексе.
type Slot struct {
	mu  sync.Mutex
	tok Token
}

// NewSlot создаёт слот, опционально сразу с токеном.
func NewSlot(initial ...Token) *Slot {
	s := &Slot{}
	if len(initial) > 0 {
		s.tok = initial[0]
	}
	return s
}

func (s *Slot) Get() (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok, s.tok != ""
}

// Set заменяет значение; пустой токен очищает слот.
func (s *Slot) Set(t Token) {
	s.mu.Lock()
	s.tok = t
	s.mu.Unlock()
}

func (s *Slot) Take() (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tok
	s.tok = ""
	return t, t != ""
}
