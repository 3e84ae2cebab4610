package socket

import (
	"strings"

	"github.com/EgorLis/screepsws/internal/sockjs"
	"github.com/EgorLis/screepsws/internal/token"
)

// Send: auth <token>
// Recv: auth ok <new token> | auth failed
const (
	authOKPrefix = "auth ok"
	authFailed   = "auth failed"
)

// parseAuthReply узнаёт ответ сервера на "auth". matched=false — это не он.
func parseAuthReply(msg sockjs.Message) (ok bool, fresh token.Token, matched bool) {
	s := string(msg)
	switch {
	case s == authOKPrefix:
		return true, "", true
	case strings.HasPrefix(s, authOKPrefix+" "):
		return true, token.Token(strings.TrimSpace(s[len(authOKPrefix)+1:])), true
	case s == authFailed:
		return false, "", true
	}
	return false, "", false
}

// AuthSucceeded — это ответ "auth ok"; удобно, чтобы подписываться после него.
func AuthSucceeded(msg sockjs.Message) bool {
	ok, _, matched := parseAuthReply(msg)
	return matched && ok
}
