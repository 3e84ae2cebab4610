package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/EgorLis/screepsws/internal/socket"
	"github.com/EgorLis/screepsws/internal/sockjs"
)

// printer — обработчик сокета для консоли: после первого "auth ok"
// подписывается на initial, все сообщения печатает в w.
type printer struct {
	subs       *subscriptions
	initial    []socket.Channel
	subscribed bool
	w          io.Writer
	log        *zap.Logger
}

func (p *printer) OnMessage(msg sockjs.Message) error {
	if socket.AuthSucceeded(msg) {
		if p.subscribed {
			return nil
		}
		p.subscribed = true
		for _, ch := range p.initial {
			if _, err := p.subs.add(ch); err != nil {
				return err
			}
			p.log.Info("subscribed", zap.Stringer("channel", ch))
		}
		return nil
	}
	fmt.Fprintln(p.w, render(msg))
	return nil
}

func (p *printer) OnError(err error) {
	p.log.Warn("socket error", zap.Error(err))
}

func (p *printer) OnDisconnect() error {
	p.log.Info("socket closed")
	return nil
}

// render: событие канала ["<topic>", data] — "<topic> <data>", иначе как есть.
func render(msg sockjs.Message) string {
	v, err := msg.Value()
	if err != nil {
		return string(msg)
	}
	list := v.GetListValue()
	if list == nil || len(list.Values) != 2 {
		return string(msg)
	}
	topic := list.Values[0].GetStringValue()
	if topic == "" {
		return string(msg)
	}
	data, err := protojson.Marshal(list.Values[1])
	if err != nil {
		return string(msg)
	}
	// protojson расставляет пробелы случайно
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return string(msg)
	}
	return topic + " " + compact.String()
}
