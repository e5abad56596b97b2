// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package loradb ingests LoRaWAN network-server uplink events, normalizes
// them into canonical frames, and forwards them to the internal message
// broker using device and application route maps.
package loradb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/loradb/loradb/pkg/errors"
	"github.com/loradb/loradb/pkg/ingest"
	"github.com/loradb/loradb/pkg/messaging"
)

const protocol = "lora"

var (
	// ErrNotFoundDev indicates a non-existent route map for a device EUI.
	ErrNotFoundDev = errors.New("route map not found for this device EUI")

	// ErrNotFoundApp indicates a non-existent route map for an application ID.
	ErrNotFoundApp = errors.New("route map not found for this application ID")

	// ErrFrameEncode indicates a canonical frame that could not be encoded
	// for forwarding.
	ErrFrameEncode = errors.New("failed to encode uplink frame")
)

// Service specifies an API that must be fullfiled by the domain service
// implementation, and all of its decorators (e.g. logging & metrics).
type Service interface {
	// CreateDevice creates a streamID:devEUI route-map.
	CreateDevice(ctx context.Context, streamID, devEUI string) error

	// UpdateDevice updates a streamID:devEUI route-map.
	UpdateDevice(ctx context.Context, streamID, devEUI string) error

	// RemoveDevice removes a streamID:devEUI route-map.
	RemoveDevice(ctx context.Context, streamID string) error

	// CreateApplication creates a channelID:appID route-map.
	CreateApplication(ctx context.Context, chanID, appID string) error

	// UpdateApplication updates a channelID:appID route-map.
	UpdateApplication(ctx context.Context, chanID, appID string) error

	// RemoveApplication removes a channelID:appID route-map.
	RemoveApplication(ctx context.Context, chanID string) error

	// Publish parses one network-server message and forwards the canonical
	// frame to the internal broker. Messages whose topic no parser claims
	// are skipped without error.
	Publish(ctx context.Context, topic string, payload []byte) error
}

var _ Service = (*adapterService)(nil)

type adapterService struct {
	publisher messaging.Publisher
	parsers   ingest.Parser
	devicesRM RouteMapRepository
	appsRM    RouteMapRepository
}

// New instantiates the LoRaDB adapter implementation.
func New(publisher messaging.Publisher, parsers ingest.Parser, devicesRM, appsRM RouteMapRepository) Service {
	return &adapterService{
		publisher: publisher,
		parsers:   parsers,
		devicesRM: devicesRM,
		appsRM:    appsRM,
	}
}

func (as *adapterService) Publish(ctx context.Context, topic string, payload []byte) error {
	frame, err := as.parsers.Parse(topic, payload)
	if err != nil {
		return err
	}
	if frame == nil {
		// Not an uplink event for any known vendor.
		return nil
	}

	streamID, err := as.devicesRM.Get(ctx, frame.DevEUI.String())
	if err != nil {
		return ErrNotFoundDev
	}

	chanID, err := as.appsRM.Get(ctx, frame.ApplicationID)
	if err != nil {
		return ErrNotFoundApp
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return errors.Wrap(ErrFrameEncode, err)
	}

	msg := messaging.Message{
		Publisher: streamID,
		Protocol:  protocol,
		Channel:   chanID,
		Payload:   data,
		Created:   time.Now().UnixNano(),
	}

	return as.publisher.Publish(ctx, msg.Channel, &msg)
}

func (as *adapterService) CreateDevice(ctx context.Context, streamID, devEUI string) error {
	return as.devicesRM.Save(ctx, streamID, devEUI)
}

func (as *adapterService) UpdateDevice(ctx context.Context, streamID, devEUI string) error {
	return as.devicesRM.Save(ctx, streamID, devEUI)
}

func (as *adapterService) RemoveDevice(ctx context.Context, streamID string) error {
	return as.devicesRM.Remove(ctx, streamID)
}

func (as *adapterService) CreateApplication(ctx context.Context, chanID, appID string) error {
	return as.appsRM.Save(ctx, chanID, appID)
}

func (as *adapterService) UpdateApplication(ctx context.Context, chanID, appID string) error {
	return as.appsRM.Save(ctx, chanID, appID)
}

func (as *adapterService) RemoveApplication(ctx context.Context, chanID string) error {
	return as.appsRM.Remove(ctx, chanID)
}
