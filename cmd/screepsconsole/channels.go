package main

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/EgorLis/screepsws/internal/socket"
)

// parseChannel превращает строку из конфига или --channel в канал.
// Каналы user:* берут userID из auth/me.
func parseChannel(spec, userID string) (socket.Channel, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(spec), ":")
	need := func() error {
		if !hasArg || arg == "" {
			return errors.Errorf("channel %q: %s needs an argument", spec, name)
		}
		return nil
	}

	switch name {
	case "server-messages":
		return socket.ServerMessages(), nil
	case "cpu":
		return socket.UserCPU(userID), nil
	case "messages":
		return socket.UserMessages(userID), nil
	case "conversation":
		if err := need(); err != nil {
			return socket.Channel{}, err
		}
		return socket.UserConversation(userID, arg), nil
	case "credits":
		return socket.UserCredits(userID), nil
	case "memory":
		if err := need(); err != nil {
			return socket.Channel{}, err
		}
		return socket.UserMemoryPath(userID, arg), nil
	case "console":
		return socket.UserConsole(userID), nil
	case "active-branch":
		return socket.UserActiveBranch(userID), nil
	case "map":
		if err := need(); err != nil {
			return socket.Channel{}, err
		}
		return socket.MapRoomUpdates(arg), nil
	case "room":
		if err := need(); err != nil {
			return socket.Channel{}, err
		}
		return socket.RoomUpdates(arg), nil
	}
	return socket.Channel{}, errors.Errorf("unknown channel %q", spec)
}

func parseChannels(specs []string, userID string) ([]socket.Channel, error) {
	out := make([]socket.Channel, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		ch, err := parseChannel(s, userID)
		if err != nil {
			return nil, err
		}
		if seen[ch.Topic()] {
			continue
		}
		seen[ch.Topic()] = true
		out = append(out, ch)
	}
	return out, nil
}
