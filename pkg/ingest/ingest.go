// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package ingest defines the network-server message parser capability and
// the dispatching logic shared by all vendor adapters. A parser is a pure,
// stateless transformation of one (topic, payload) pair into a canonical
// uplink frame; it holds no mutable state and is safe for concurrent use.
package ingest

import (
	"fmt"

	"github.com/loradb/loradb/pkg/errors"
	"github.com/loradb/loradb/pkg/frames"
)

// MaxPayloadSize bounds the per-message decode cost. It is shared by all
// vendor parsers; payloads above it are rejected before JSON decoding.
const MaxPayloadSize = 256 * 1024

var (
	// ErrPayloadTooLarge indicates a payload exceeding MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")

	// ErrMalformedJSON indicates a payload that failed to decode as the
	// vendor wire schema.
	ErrMalformedJSON = errors.New("malformed uplink payload")

	// ErrInvalidDevEUI indicates a device EUI that failed canonical-format
	// validation. It is distinct from ErrMalformedJSON so that callers can
	// quarantine rather than drop such messages.
	ErrInvalidDevEUI = errors.New("invalid device EUI")
)

// Parser transforms one vendor-specific network-server message into the
// canonical model. Implementations exist per supported vendor.
//
//go:generate mockery --name Parser --filename parser.go --quiet --note "Copyright (c) LoRaDB Contributors"
type Parser interface {
	// Parse decodes an uplink event message. It returns (nil, nil) when the
	// topic does not denote an uplink event for this vendor, so that a
	// dispatcher can try several parsers against the same message without
	// false failures. A non-nil error means the message matched but is
	// oversized, malformed, or carries an invalid device identity.
	Parse(topic string, payload []byte) (*frames.UplinkFrame, error)

	// ExtractDevEUI returns the device identifier segment of the topic
	// using the vendor's topic-segment convention, without touching the
	// payload. It reports false when the topic has too few segments.
	ExtractDevEUI(topic string) (string, bool)
}

// ValidatePayloadSize rejects payloads larger than limit. The returned error
// carries the actual and allowed sizes.
func ValidatePayloadSize(payload []byte, limit int) error {
	if len(payload) > limit {
		return errors.Wrap(ErrPayloadTooLarge, fmt.Errorf("payload size %d exceeds limit of %d bytes", len(payload), limit))
	}

	return nil
}

var _ Parser = (*Dispatcher)(nil)

// Dispatcher routes a message to the first vendor parser that recognizes its
// topic. It implements Parser itself, so a Dispatcher can stand wherever a
// single vendor parser is expected.
type Dispatcher struct {
	parsers []Parser
}

// NewDispatcher returns a dispatcher trying the given parsers in order.
func NewDispatcher(parsers ...Parser) *Dispatcher {
	return &Dispatcher{parsers: parsers}
}

// Parse tries each vendor parser in turn. The first one to claim the topic
// decides the outcome; a hard error from a claiming parser is returned as-is.
func (d *Dispatcher) Parse(topic string, payload []byte) (*frames.UplinkFrame, error) {
	for _, p := range d.parsers {
		frame, err := p.Parse(topic, payload)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			return frame, nil
		}
	}

	return nil, nil
}

// ExtractDevEUI returns the device identifier from the first parser whose
// topic convention matches.
func (d *Dispatcher) ExtractDevEUI(topic string) (string, bool) {
	for _, p := range d.parsers {
		if eui, ok := p.ExtractDevEUI(topic); ok {
			return eui, true
		}
	}

	return "", false
}
