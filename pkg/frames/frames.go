// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package frames contains the canonical, vendor-agnostic model of LoRaWAN
// traffic. Network-server specific formats are mapped onto these types by
// the ingest parsers.
package frames

import "time"

// LoRa modulation identifier used by data rate descriptors.
const ModulationLoRa = "LORA"

// DataRate describes the radio modulation used for a single frame.
type DataRate struct {
	Modulation      string `json:"modulation"`
	Bandwidth       uint32 `json:"bandwidth"`
	SpreadingFactor uint8  `json:"spreadingFactor"`
}

// NewLoRaDataRate returns a LoRa modulated data rate descriptor for the
// given bandwidth in Hz and spreading-factor index.
func NewLoRaDataRate(bandwidth uint32, sf uint8) DataRate {
	return DataRate{
		Modulation:      ModulationLoRa,
		Bandwidth:       bandwidth,
		SpreadingFactor: sf,
	}
}

// Location is a gateway position. Altitude is optional and may be nil.
type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// GatewayRxInfo holds one gateway's observed signal metrics for a single
// uplink. GatewayID is never empty; parsers substitute "unknown" when the
// source omits it.
type GatewayRxInfo struct {
	GatewayID string    `json:"gatewayId"`
	RSSI      int16     `json:"rssi"`
	SNR       float64   `json:"snr"`
	Channel   uint8     `json:"channel"`
	RFChain   uint8     `json:"rfChain"`
	Location  *Location `json:"location,omitempty"`
}

// UplinkFrame is the canonical record of one device-to-network message plus
// its radio reception context. ReceivedAt is always populated. DecodedPayload
// and RawPayload are opaque pass-through values from the network server and
// are nil when the source message carries none.
type UplinkFrame struct {
	DevEUI         DevEUI          `json:"devEUI"`
	ApplicationID  string          `json:"applicationId"`
	DeviceName     string          `json:"deviceName,omitempty"`
	ReceivedAt     time.Time       `json:"receivedAt"`
	FPort          uint8           `json:"fPort"`
	FCnt           uint32          `json:"fCnt"`
	Confirmed      bool            `json:"confirmed"`
	ADR            bool            `json:"adr"`
	DataRate       DataRate        `json:"dataRate"`
	Frequency      uint64          `json:"frequency"`
	RxInfo         []GatewayRxInfo `json:"rxInfo"`
	DecodedPayload interface{}     `json:"decodedPayload,omitempty"`
	RawPayload     string          `json:"rawPayload,omitempty"`
}
