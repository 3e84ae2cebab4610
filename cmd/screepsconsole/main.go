package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/EgorLis/screepsws/internal/api"
	"github.com/EgorLis/screepsws/internal/config"
	"github.com/EgorLis/screepsws/internal/logging"
	"github.com/EgorLis/screepsws/internal/observability"
	"github.com/EgorLis/screepsws/internal/socket"
	"github.com/EgorLis/screepsws/internal/token"
	"github.com/EgorLis/screepsws/internal/transport"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "screepsconsole:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("screepsconsole", pflag.ContinueOnError)
	configPath := flagSet.String("config", "conf/screeps.toml", "path to TOML config (created with defaults if missing)")
	logLevel := flagSet.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	metricsAddr := flagSet.String("metrics-addr", "", "serve Prometheus /metrics on this address")
	channels := flagSet.StringArray("channel", nil, "channel to subscribe, repeatable (console, cpu, room:E5N39, ...)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if len(*channels) > 0 {
		cfg.Channels = *channels
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		stopMetrics := serveMetrics(cfg.Metrics.Addr, log)
		defer stopMetrics()
	}

	tokens := token.NewSlot(token.Token(cfg.API.Token))
	client := api.NewClient(cfg.API.URL, tokens, api.WithLogger(log), api.WithUsername(cfg.API.Username))
	if cfg.API.Token == "" {
		if err := client.Login(ctx, cfg.API.Email, cfg.API.Password); err != nil {
			return err
		}
	}
	me, err := client.Me(ctx)
	if err != nil {
		return err
	}
	log.Info("logged in", zap.String("user", me.Username), zap.String("id", me.ID))

	subs, err := parseChannels(cfg.Channels, me.ID)
	if err != nil {
		return err
	}

	addr := cfg.Socket.URL
	if addr == "" {
		if addr, err = socket.URL(cfg.API.URL); err != nil {
			return err
		}
	}

	// factory вызывается внутри Connect, до его возврата
	var active *subscriptions
	conn, err := socket.Connect(ctx, addr,
		func(s socket.Sender) socket.Handler {
			active = newSubscriptions(s)
			return &printer{subs: active, initial: subs, w: os.Stdout, log: log}
		},
		client.Tokens(),
		socket.WithLogger(log),
		socket.WithLoginRetry(cfg.Socket.LoginRetry.Duration),
		socket.WithTransport(transport.WithPingInterval(cfg.Socket.PingInterval.Duration)),
	)
	if err != nil {
		return err
	}
	log.Info("connected, type !help for commands, Ctrl+C to stop", zap.String("addr", addr))

	go func() {
		cmds := &commands{subs: active, userID: me.ID, w: os.Stdout}
		if err := readCommands(ctx, os.Stdin, cmds); err != nil {
			log.Warn("stdin closed", zap.Error(err))
		}
	}()

	select {
	case <-ctx.Done():
		conn.Close()
		<-conn.Done()
		return nil
	case <-conn.Done():
		// сервер закрыл соединение, переподключения нет
		return conn.Err()
	}
}

func serveMetrics(addr string, log *zap.Logger) func() {
	observability.RegisterMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("metrics enabled", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
