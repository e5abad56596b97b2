// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package chirpstack maps ChirpStack v4 uplink events onto the canonical
// frame model. Topic format: application/{app_id}/device/{dev_eui}/event/up.
package chirpstack

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/loradb/loradb/pkg/errors"
	"github.com/loradb/loradb/pkg/frames"
	"github.com/loradb/loradb/pkg/ingest"
)

const (
	// Topic marker denoting an uplink event.
	uplinkEventSuffix = "/event/up"

	// Leading segments of the event topic, application/{app_id}/device/...
	applicationSegment = "application"
	deviceSegment      = "device"

	// Position of the device EUI segment in the event topic.
	devEUISegment = 3

	// ChirpStack does not carry the bandwidth in the uplink event, only the
	// data-rate index. 125 kHz is the EU868/US915 default.
	defaultBandwidth = 125000

	unknown = "unknown"
)

var (
	errMissingDeviceInfo = errors.New("missing required field deviceInfo")
	errMissingDevEUI     = errors.New("missing required field devEui")
)

// uplinkEvent is the ChirpStack v4 uplink message format. Every field except
// deviceInfo and deviceInfo.devEui is optional; absence is resolved by the
// defaulting policy in Parse, not at decode time.
type uplinkEvent struct {
	DeduplicationID string      `json:"deduplicationId"`
	Time            string      `json:"time"`
	DeviceInfo      *deviceInfo `json:"deviceInfo"`
	DevAddr         string      `json:"devAddr"`
	FPort           uint8       `json:"fPort"`
	FCnt            uint32      `json:"fCnt"`
	Confirmed       bool        `json:"confirmed"`
	ADR             bool        `json:"adr"`
	DR              uint8       `json:"dr"`
	RxInfo          []rxInfo    `json:"rxInfo"`
	TxInfo          *txInfo     `json:"txInfo"`
	Object          interface{} `json:"object"`
	Data            string      `json:"data"`
}

type deviceInfo struct {
	TenantID          string      `json:"tenantId"`
	TenantName        string      `json:"tenantName"`
	DevEUI            string      `json:"devEui"`
	DeviceName        string      `json:"deviceName"`
	ApplicationID     string      `json:"applicationId"`
	ApplicationName   string      `json:"applicationName"`
	DeviceProfileID   string      `json:"deviceProfileId"`
	DeviceProfileName string      `json:"deviceProfileName"`
	DeviceClass       string      `json:"deviceClassEnabled"`
	Tags              interface{} `json:"tags"`
}

type rxInfo struct {
	GatewayID string    `json:"gatewayId"`
	RSSI      int16     `json:"rssi"`
	SNR       float64   `json:"snr"`
	Channel   uint8     `json:"channel"`
	RFChain   uint8     `json:"rfChain"`
	Location  *location `json:"location"`
}

type location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
}

type txInfo struct {
	Frequency uint64 `json:"frequency"`
	// Can be a string or an object depending on the ChirpStack version.
	Modulation interface{} `json:"modulation"`
}

var _ ingest.Parser = (*parser)(nil)

type parser struct{}

// New returns the ChirpStack uplink parser.
func New() ingest.Parser {
	return parser{}
}

// Parse decodes a ChirpStack uplink event and maps it onto the canonical
// frame, substituting documented defaults for absent optional fields.
func (p parser) Parse(topic string, payload []byte) (*frames.UplinkFrame, error) {
	if !strings.Contains(topic, uplinkEventSuffix) {
		return nil, nil
	}

	if err := ingest.ValidatePayloadSize(payload, ingest.MaxPayloadSize); err != nil {
		return nil, err
	}

	var msg uplinkEvent
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, errors.Wrap(ingest.ErrMalformedJSON, err)
	}
	if msg.DeviceInfo == nil {
		return nil, errors.Wrap(ingest.ErrMalformedJSON, errMissingDeviceInfo)
	}
	if msg.DeviceInfo.DevEUI == "" {
		return nil, errors.Wrap(ingest.ErrMalformedJSON, errMissingDevEUI)
	}

	devEUI, err := frames.ParseDevEUI(msg.DeviceInfo.DevEUI)
	if err != nil {
		return nil, errors.Wrap(ingest.ErrInvalidDevEUI, err)
	}

	frame := frames.UplinkFrame{
		DevEUI:         devEUI,
		ApplicationID:  applicationID(msg.DeviceInfo),
		DeviceName:     msg.DeviceInfo.DeviceName,
		ReceivedAt:     receivedAt(msg.Time),
		FPort:          msg.FPort,
		FCnt:           msg.FCnt,
		Confirmed:      msg.Confirmed,
		ADR:            msg.ADR,
		DataRate:       frames.NewLoRaDataRate(defaultBandwidth, msg.DR),
		RxInfo:         make([]frames.GatewayRxInfo, 0, len(msg.RxInfo)),
		DecodedPayload: msg.Object,
		RawPayload:     msg.Data,
	}
	if msg.TxInfo != nil {
		frame.Frequency = msg.TxInfo.Frequency
	}

	for _, rx := range msg.RxInfo {
		gwID := rx.GatewayID
		if gwID == "" {
			gwID = unknown
		}
		frame.RxInfo = append(frame.RxInfo, frames.GatewayRxInfo{
			GatewayID: gwID,
			RSSI:      rx.RSSI,
			SNR:       rx.SNR,
			Channel:   rx.Channel,
			RFChain:   rx.RFChain,
			Location:  gatewayLocation(rx.Location),
		})
	}

	return &frame, nil
}

// ExtractDevEUI returns the device EUI segment of the event topic. Topics
// not shaped as application/{app_id}/device/{dev_eui}/... belong to other
// vendors and are not claimed.
func (p parser) ExtractDevEUI(topic string) (string, bool) {
	segments := strings.Split(topic, "/")
	if len(segments) <= devEUISegment {
		return "", false
	}
	if segments[0] != applicationSegment || segments[2] != deviceSegment {
		return "", false
	}

	return segments[devEUISegment], true
}

// applicationID prefers the human-readable application name over the raw
// identifier, degrading to "unknown" when neither is present.
func applicationID(di *deviceInfo) string {
	switch {
	case di.ApplicationName != "":
		return di.ApplicationName
	case di.ApplicationID != "":
		return di.ApplicationID
	default:
		return unknown
	}
}

// receivedAt parses the event timestamp, falling back to the current time
// when it is absent or unparsable.
func receivedAt(ts string) time.Time {
	if ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			return t.UTC()
		}
	}

	return time.Now().UTC()
}

// gatewayLocation is only meaningful when both coordinates are known; a
// record with just an altitude yields no location.
func gatewayLocation(loc *location) *frames.Location {
	if loc == nil || loc.Latitude == nil || loc.Longitude == nil {
		return nil
	}

	return &frames.Location{
		Latitude:  *loc.Latitude,
		Longitude: *loc.Longitude,
		Altitude:  loc.Altitude,
	}
}
