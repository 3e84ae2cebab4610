package api

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EgorLis/screepsws/internal/token"
)

// DefaultURL — официальный сервер.
const DefaultURL = "https://screeps.com/api/"

// Client — HTTP API Screeps. Токен хранится в общем token.Storage:
// сервер возвращает свежий X-Token в ответах, и его забирает сокет.
type Client struct {
	http     *http.Client
	base     string
	username string
	tokens   token.Storage
	log      *zap.Logger
}

type Option func(*Client)

// WithHTTPClient подменяет http.Client (таймауты, прокси, тесты).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithUsername задаёт X-Username (нужен на приватных серверах со steam-входом).
func WithUsername(name string) Option {
	return func(c *Client) { c.username = name }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Создает новый клиент API. baseURL вида https://screeps.com/api/
func NewClient(baseURL string, tokens token.Storage, opts ...Option) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		http:   &http.Client{Timeout: 10 * time.Second},
		base:   baseURL,
		tokens: tokens,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens — хранилище токена клиента; его же передают в socket.Connect.
func (c *Client) Tokens() token.Storage { return c.tokens }

// User — ответ auth/me (только нужные поля).
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	CPU      int    `json:"cpu,omitempty"`
	GCL      int64  `json:"gcl,omitempty"`
}
