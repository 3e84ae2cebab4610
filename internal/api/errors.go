package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMissingToken — сервер ответил ok, но не прислал токен.
var ErrMissingToken = errors.New("api: response has no token")

// NotOKError — ответ 2xx, но поле ok не равно 1.
type NotOKError struct {
	Endpoint string
	Reason   string
}

func (e *NotOKError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("api: %s: not ok: %s", e.Endpoint, e.Reason)
	}
	return fmt.Sprintf("api: %s: not ok", e.Endpoint)
}

// StatusError — ответ не 2xx.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s: status %d: %s", e.Endpoint, e.Code, e.Body)
}
