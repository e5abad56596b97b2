// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package messaging holds the internal broker abstractions used to forward
// canonical frames to downstream consumers.
package messaging

import "context"

// Message is the internal broker message envelope. Payload carries one
// canonical frame encoded as JSON.
type Message struct {
	Channel   string `json:"channel,omitempty"`
	Subtopic  string `json:"subtopic,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
	Payload   []byte `json:"payload,omitempty"`
	Created   int64  `json:"created,omitempty"`
}

// Publisher specifies message publishing API.
//
//go:generate mockery --name Publisher --filename publisher.go --quiet --note "Copyright (c) LoRaDB Contributors"
type Publisher interface {
	// Publish publishes message to the given topic.
	Publish(ctx context.Context, topic string, msg *Message) error

	// Close gracefully closes message publisher's connection.
	Close() error
}
