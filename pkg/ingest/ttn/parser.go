// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package ttn maps The Things Network v2 uplink messages onto the canonical
// frame model. Topic format: {app_id}/devices/{dev_id}/up.
package ttn

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/loradb/loradb/pkg/errors"
	"github.com/loradb/loradb/pkg/frames"
	"github.com/loradb/loradb/pkg/ingest"
)

const (
	deviceMarker = "/devices/"
	uplinkSuffix = "/up"

	devIDSegment = 2

	defaultBandwidth = 125000

	unknown = "unknown"
)

var errMissingHardwareSerial = errors.New("missing required field hardware_serial")

// uplinkMessage is the TTN v2 MQTT uplink format. Payload fields keep the
// wire names from the TTN data API.
type uplinkMessage struct {
	AppID          string      `json:"app_id"`
	DevID          string      `json:"dev_id"`
	HardwareSerial string      `json:"hardware_serial"`
	Port           uint8       `json:"port"`
	Counter        uint32      `json:"counter"`
	Confirmed      bool        `json:"confirmed"`
	IsRetry        bool        `json:"is_retry"`
	PayloadRaw     []byte      `json:"payload_raw"`
	PayloadFields  interface{} `json:"payload_fields"`
	Metadata       *metadata   `json:"metadata"`
}

type metadata struct {
	Time       string    `json:"time"`
	Frequency  float64   `json:"frequency"`
	Modulation string    `json:"modulation"`
	DataRate   string    `json:"data_rate"`
	CodingRate string    `json:"coding_rate"`
	Gateways   []gateway `json:"gateways"`
}

type gateway struct {
	GatewayID string   `json:"gtw_id"`
	Time      string   `json:"time"`
	Channel   uint8    `json:"channel"`
	RSSI      int16    `json:"rssi"`
	SNR       float64  `json:"snr"`
	RFChain   uint8    `json:"rf_chain"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
}

var _ ingest.Parser = (*parser)(nil)

type parser struct{}

// New returns the TTN uplink parser.
func New() ingest.Parser {
	return parser{}
}

func (p parser) Parse(topic string, payload []byte) (*frames.UplinkFrame, error) {
	if !strings.Contains(topic, deviceMarker) || !strings.HasSuffix(topic, uplinkSuffix) {
		return nil, nil
	}

	if err := ingest.ValidatePayloadSize(payload, ingest.MaxPayloadSize); err != nil {
		return nil, err
	}

	var msg uplinkMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, errors.Wrap(ingest.ErrMalformedJSON, err)
	}
	if msg.HardwareSerial == "" {
		return nil, errors.Wrap(ingest.ErrMalformedJSON, errMissingHardwareSerial)
	}

	devEUI, err := frames.ParseDevEUI(msg.HardwareSerial)
	if err != nil {
		return nil, errors.Wrap(ingest.ErrInvalidDevEUI, err)
	}

	appID := msg.AppID
	if appID == "" {
		appID = unknown
	}

	frame := frames.UplinkFrame{
		DevEUI:         devEUI,
		ApplicationID:  appID,
		DeviceName:     msg.DevID,
		ReceivedAt:     time.Now().UTC(),
		FPort:          msg.Port,
		FCnt:           msg.Counter,
		Confirmed:      msg.Confirmed,
		DataRate:       frames.NewLoRaDataRate(defaultBandwidth, 0),
		DecodedPayload: msg.PayloadFields,
		RawPayload:     base64.StdEncoding.EncodeToString(msg.PayloadRaw),
	}

	if md := msg.Metadata; md != nil {
		if t, terr := time.Parse(time.RFC3339Nano, md.Time); terr == nil {
			frame.ReceivedAt = t.UTC()
		}
		// TTN reports the frequency in MHz.
		frame.Frequency = uint64(math.Round(md.Frequency * 1e6))
		frame.DataRate = dataRate(md.DataRate)

		frame.RxInfo = make([]frames.GatewayRxInfo, 0, len(md.Gateways))
		for _, gw := range md.Gateways {
			gwID := gw.GatewayID
			if gwID == "" {
				gwID = unknown
			}
			frame.RxInfo = append(frame.RxInfo, frames.GatewayRxInfo{
				GatewayID: gwID,
				RSSI:      gw.RSSI,
				SNR:       gw.SNR,
				Channel:   gw.Channel,
				RFChain:   gw.RFChain,
				Location:  location(gw),
			})
		}
	}

	return &frame, nil
}

// ExtractDevEUI returns the device identifier segment of the topic. For TTN
// this is the device ID, not the hardware EUI; route maps key on it the same
// way.
func (p parser) ExtractDevEUI(topic string) (string, bool) {
	if !strings.Contains(topic, deviceMarker) {
		return "", false
	}

	segments := strings.Split(topic, "/")
	if len(segments) <= devIDSegment {
		return "", false
	}

	return segments[devIDSegment], true
}

// dataRate parses the TTN LoRa data-rate string, e.g. "SF7BW125". Anything
// unrecognized degrades to the default bandwidth with index 0.
func dataRate(dr string) frames.DataRate {
	var sf uint8
	var bwKHz uint32
	if _, err := fmt.Sscanf(dr, "SF%dBW%d", &sf, &bwKHz); err != nil {
		return frames.NewLoRaDataRate(defaultBandwidth, 0)
	}

	return frames.NewLoRaDataRate(bwKHz*1000, sf)
}

func location(gw gateway) *frames.Location {
	if gw.Latitude == nil || gw.Longitude == nil {
		return nil
	}

	return &frames.Location{
		Latitude:  *gw.Latitude,
		Longitude: *gw.Longitude,
		Altitude:  gw.Altitude,
	}
}
