// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package mqtt subscribes to network-server MQTT brokers and feeds received
// messages to the adapter service.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/loradb/loradb"
)

// Broker represents the network-server MQTT broker.
type Broker interface {
	// Subscribe subscribes to the given topic filter and handles uplink
	// events.
	Subscribe(topic string) error
}

type broker struct {
	svc     loradb.Service
	client  mqtt.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewBroker returns a new MQTT broker instance.
func NewBroker(svc loradb.Service, client mqtt.Client, timeout time.Duration, logger *slog.Logger) Broker {
	return broker{
		svc:     svc,
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

func (b broker) Subscribe(topic string) error {
	token := b.client.Subscribe(topic, 0, b.handleMsg)
	if token.Error() != nil {
		return token.Error()
	}
	if ok := token.WaitTimeout(b.timeout); !ok {
		return fmt.Errorf("failed to subscribe to topic %s within %s", topic, b.timeout)
	}

	return token.Error()
}

// handleMsg is triggered when a new message arrives from the network server.
// A single malformed message is logged and dropped; it never aborts the
// subscription or processing of subsequent messages.
func (b broker) handleMsg(_ mqtt.Client, msg mqtt.Message) {
	if err := b.svc.Publish(context.Background(), msg.Topic(), msg.Payload()); err != nil {
		b.logger.Error(fmt.Sprintf("failed to handle message on topic %s: %s", msg.Topic(), err))
	}
}
