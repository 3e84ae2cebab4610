package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/EgorLis/screepsws/internal/token"
)

const (
	headerToken    = "X-Token"
	headerUsername = "X-Username"

	// сколько тела ответа класть в StatusError
	maxErrorBody = 512
)

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResponse struct {
	OK    int    `json:"ok"`
	Token string `json:"token"`
	Error string `json:"error"`
}

// Login входит по email/паролю и кладёт токен в хранилище.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(signinRequest{Email: email, Password: password})
	if err != nil {
		return errors.Wrap(err, "api: encode signin")
	}

	var resp signinResponse
	if err := c.do(ctx, http.MethodPost, "auth/signin", body, false, &resp); err != nil {
		return err
	}
	if resp.OK != 1 {
		return &NotOKError{Endpoint: "auth/signin", Reason: resp.Error}
	}
	if resp.Token == "" {
		return ErrMissingToken
	}
	c.tokens.Set(token.Token(resp.Token))
	c.log.Info("api: signed in", zap.String("token", token.Token(resp.Token).Redacted()))
	return nil
}

type meResponse struct {
	OK    int    `json:"ok"`
	Error string `json:"error"`
	User
}

// Me — текущий пользователь; нужен ради ID для каналов user:<id>/...
func (c *Client) Me(ctx context.Context) (User, error) {
	var resp meResponse
	if err := c.do(ctx, http.MethodGet, "auth/me", nil, true, &resp); err != nil {
		return User{}, err
	}
	if resp.OK != 1 {
		return User{}, &NotOKError{Endpoint: "auth/me", Reason: resp.Error}
	}
	return resp.User, nil
}

// do выполняет запрос к endpoint и декодирует JSON в out.
// authed — добавить X-Token из хранилища (Get, не Take: токен остаётся для сокета).
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, authed bool, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+endpoint, rd)
	if err != nil {
		return errors.Wrapf(err, "api: build %s", endpoint)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if authed {
		tok, ok := c.tokens.Get()
		if !ok {
			return errors.Wrapf(ErrMissingToken, "api: %s", endpoint)
		}
		req.Header.Set(headerToken, string(tok))
		if c.username != "" {
			req.Header.Set(headerUsername, c.username)
		} else {
			req.Header.Set(headerUsername, string(tok))
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "api: %s", endpoint)
	}
	defer resp.Body.Close()

	// сервер продлевает токен в каждом ответе
	if fresh := resp.Header.Get(headerToken); fresh != "" {
		c.tokens.Set(token.Token(fresh))
	}

	c.log.Debug("api: response", zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(b)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "api: decode %s", endpoint)
	}
	return nil
}
