package socket

import "github.com/pkg/errors"

var (
	// ErrUnauthorized — на момент авторизации в token.Storage не было токена.
	ErrUnauthorized = errors.New("socket: unauthorized: no token available")
	// ErrAuthFailed — сервер ответил "auth failed" на наш токен.
	ErrAuthFailed = errors.New("socket: server rejected auth token")
)
