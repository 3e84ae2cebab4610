package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/EgorLis/screepsws/internal/socket"
)

// сплит с поддержкой кавычек: !raw "gzip on"
var reArg = regexp.MustCompile(`"([^"]*)"|(\S+)`)

func splitArgs(s string) []string {
	var out []string
	for _, m := range reArg.FindAllStringSubmatch(s, -1) {
		if m[1] != "" {
			out = append(out, m[1])
		} else {
			out = append(out, m[2])
		}
	}
	return out
}

// subscriptions — активные подписки соединения. Вызывается и из цикла
// событий (первый auth ok), и из чтения stdin.
type subscriptions struct {
	mu     sync.Mutex
	sender socket.Sender
	active map[string]socket.Channel
}

func newSubscriptions(s socket.Sender) *subscriptions {
	return &subscriptions{sender: s, active: map[string]socket.Channel{}}
}

// add подписывает, если ещё не подписаны; false — уже была.
func (s *subscriptions) add(ch socket.Channel) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[ch.Topic()]; ok {
		return false, nil
	}
	if err := s.sender.Subscribe(ch); err != nil {
		return false, err
	}
	s.active[ch.Topic()] = ch
	return true, nil
}

func (s *subscriptions) remove(ch socket.Channel) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[ch.Topic()]; !ok {
		return false, nil
	}
	if err := s.sender.Unsubscribe(ch); err != nil {
		return false, err
	}
	delete(s.active, ch.Topic())
	return true, nil
}

func (s *subscriptions) list() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.active))
	for topic := range s.active {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// commands — команды из stdin.
type commands struct {
	subs   *subscriptions
	userID string
	w      io.Writer
}

var helpLines = []string{
	"!help",
	"!sub <channel>      (console, cpu, room:E5N39, memory:<path>, ...)",
	"!unsub <channel>",
	"!subs",
	"!gzip on|off",
	"!raw <command...>",
}

func (c *commands) handle(line string) error {
	fields := splitArgs(line)
	if len(fields) == 0 {
		return nil
	}
	cmd := strings.ToLower(fields[0])
	say := func(format string, args ...any) { fmt.Fprintf(c.w, format+"\n", args...) }

	switch cmd {
	case "!help":
		say("%s", strings.Join(helpLines, "\n"))
		return nil

	case "!sub", "!unsub":
		if len(fields) != 2 {
			return errors.Errorf("usage: %s <channel>", cmd)
		}
		ch, err := parseChannel(fields[1], c.userID)
		if err != nil {
			return err
		}
		var changed bool
		if cmd == "!sub" {
			changed, err = c.subs.add(ch)
		} else {
			changed, err = c.subs.remove(ch)
		}
		if err != nil {
			return err
		}
		if !changed {
			say("%s: nothing to do for %s", cmd, ch)
			return nil
		}
		say("%s %s", cmd, ch)
		return nil

	case "!subs":
		topics := c.subs.list()
		if len(topics) == 0 {
			say("subscriptions: (empty)")
			return nil
		}
		say("subscriptions: %s", strings.Join(topics, ", "))
		return nil

	case "!gzip":
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			return errors.New("usage: !gzip on|off")
		}
		return c.subs.sender.SetGzip(fields[1] == "on")

	case "!raw":
		if len(fields) < 2 {
			return errors.New("usage: !raw <command...>")
		}
		return c.subs.sender.SendRaw(strings.Join(fields[1:], " "))
	}
	return errors.Errorf("unknown command %q, try !help", fields[0])
}

// readCommands читает команды построчно до EOF или отмены ctx.
// Ошибки команд печатаются и не прерывают чтение.
func readCommands(ctx context.Context, r io.Reader, c *commands) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if err := c.handle(sc.Text()); err != nil {
			fmt.Fprintln(c.w, "error:", err)
		}
	}
	return sc.Err()
}
