package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	DefaultAPIURL     = "https://screeps.com/api/"
	DefaultLoginRetry = 15 * time.Second
	DefaultLogLevel   = "info"
)

// Переменные окружения, перекрывающие файл.
const (
	EnvAPIURL   = "SCREEPS_API_URL"
	EnvUsername = "SCREEPS_API_USERNAME"
	EnvPassword = "SCREEPS_API_PASSWORD"
	EnvToken    = "SCREEPS_API_TOKEN"
	EnvLogLevel = "SCREEPS_LOG_LEVEL"
)

type API struct {
	URL      string `toml:"url"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
	Token    string `toml:"token"`
	// X-Username для приватных серверов; пусто — подставляется токен
	Username string `toml:"username"`
}

type Socket struct {
	// пусто — выводится из API.URL
	URL          string   `toml:"url"`
	PingInterval Duration `toml:"ping_interval"`
	LoginRetry   Duration `toml:"login_retry"`
}

type Log struct {
	Level string `toml:"level"`
}

type Metrics struct {
	// пусто — /metrics не поднимается
	Addr string `toml:"addr"`
}

type Config struct {
	API      API      `toml:"api"`
	Socket   Socket   `toml:"socket"`
	Log      Log      `toml:"log"`
	Metrics  Metrics  `toml:"metrics"`
	Channels []string `toml:"channels"`
}

// Duration — time.Duration в TOML строкой ("15s", "1m").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return errors.Wrapf(err, "bad duration %q", b)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() Config {
	return Config{
		API:      API{URL: DefaultAPIURL},
		Socket:   Socket{LoginRetry: Duration{DefaultLoginRetry}},
		Log:      Log{Level: DefaultLogLevel},
		Channels: []string{"console"},
	}
}

// Load читает TOML поверх значений по умолчанию.
// Нет файла — создаём его с умолчаниями и возвращаем их.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, Save(path, cfg)
		}
		return Config{}, errors.Wrap(err, "read config")
	}

	meta, err := toml.Decode(string(b), &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		return Config{}, errors.Errorf("config %s: unknown keys %v", path, keys)
	}
	cfg.trim()
	return cfg, nil
}

// Save пишет конфиг в TOML, создавая каталог.
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create config dir")
		}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "encode config")
	}
	// в файле может оказаться пароль
	return errors.Wrap(os.WriteFile(path, buf.Bytes(), 0o600), "write config")
}

// ApplyEnv перекрывает значения из SCREEPS_*.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.API.URL, EnvAPIURL)
	set(&c.API.Email, EnvUsername)
	set(&c.API.Password, EnvPassword)
	set(&c.API.Token, EnvToken)
	set(&c.Log.Level, EnvLogLevel)
}

func (c *Config) Validate() error {
	if c.API.URL == "" {
		return errors.New("config: api.url is empty")
	}
	if c.API.Token == "" && (c.API.Email == "" || c.API.Password == "") {
		return errors.New("config: need api.token or api.email with api.password")
	}
	if c.Socket.PingInterval.Duration < 0 {
		return errors.New("config: socket.ping_interval is negative")
	}
	if c.Socket.LoginRetry.Duration <= 0 {
		return errors.New("config: socket.login_retry must be positive")
	}
	return nil
}

func (c *Config) trim() {
	c.API.URL = strings.TrimSpace(c.API.URL)
	c.API.Email = strings.TrimSpace(c.API.Email)
	c.API.Token = strings.TrimSpace(c.API.Token)
	c.API.Username = strings.TrimSpace(c.API.Username)
	c.Socket.URL = strings.TrimSpace(c.Socket.URL)
	c.Metrics.Addr = strings.TrimSpace(c.Metrics.Addr)
	for i, ch := range c.Channels {
		c.Channels[i] = strings.TrimSpace(ch)
	}
}
