// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package nats provides a NATS implementation of the messaging Publisher.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/loradb/loradb/pkg/errors"
	"github.com/loradb/loradb/pkg/messaging"
	broker "github.com/nats-io/nats.go"
)

// A maximum number of reconnect attempts before NATS connection closes
// permanently. Value -1 means the client will never give up on retrying to
// re-establish the connection.
const maxReconnects = -1

const chansPrefix = "channels"

// ErrEmptyTopic indicates an attempt to publish on an empty topic.
var ErrEmptyTopic = errors.New("empty topic")

var _ messaging.Publisher = (*publisher)(nil)

type publisher struct {
	conn *broker.Conn
}

// NewPublisher returns NATS message Publisher.
func NewPublisher(url string) (messaging.Publisher, error) {
	conn, err := broker.Connect(url, broker.MaxReconnects(maxReconnects))
	if err != nil {
		return nil, err
	}

	return &publisher{conn: conn}, nil
}

func (pub *publisher) Publish(_ context.Context, topic string, msg *messaging.Message) error {
	if topic == "" {
		return ErrEmptyTopic
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s.%s", chansPrefix, topic)
	if msg.Subtopic != "" {
		subject = fmt.Sprintf("%s.%s", subject, msg.Subtopic)
	}

	return pub.conn.Publish(subject, data)
}

func (pub *publisher) Close() error {
	pub.conn.Close()
	return nil
}
