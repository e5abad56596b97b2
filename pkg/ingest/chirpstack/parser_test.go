// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

package chirpstack_test

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/loradb/loradb/pkg/errors"
	"github.com/loradb/loradb/pkg/ingest"
	"github.com/loradb/loradb/pkg/ingest/chirpstack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uplinkTopic = "application/test-app/device/0123456789abcdef/event/up"

	fullPayload = `{
		"time": "2025-11-26T06:14:58.501022+00:00",
		"deviceInfo": {
			"devEui": "0123456789abcdef",
			"deviceName": "test-sensor",
			"applicationId": "test-app-id",
			"applicationName": "test-app"
		},
		"fPort": 1,
		"fCnt": 42,
		"confirmed": false,
		"adr": true,
		"dr": 5,
		"rxInfo": [{
			"gatewayId": "gateway-001",
			"rssi": -50,
			"snr": 10.5,
			"channel": 0,
			"rfChain": 0
		}],
		"txInfo": {
			"frequency": 868100000
		},
		"object": {
			"temperature": 22.5,
			"humidity": 60.0
		},
		"data": "AQIDBAUGBwg="
	}`
)

func TestParse(t *testing.T) {
	parser := chirpstack.New()

	frame, err := parser.Parse(uplinkTopic, []byte(fullPayload))
	require.NoError(t, err)
	require.NotNil(t, frame)

	assert.Equal(t, "0123456789abcdef", frame.DevEUI.String())
	assert.Equal(t, "test-app", frame.ApplicationID)
	assert.Equal(t, "test-sensor", frame.DeviceName)
	assert.Equal(t, uint8(1), frame.FPort)
	assert.Equal(t, uint32(42), frame.FCnt)
	assert.False(t, frame.Confirmed)
	assert.True(t, frame.ADR)
	assert.Equal(t, uint32(125000), frame.DataRate.Bandwidth)
	assert.Equal(t, uint8(5), frame.DataRate.SpreadingFactor)
	assert.Equal(t, uint64(868100000), frame.Frequency)
	require.Len(t, frame.RxInfo, 1)
	assert.Equal(t, "gateway-001", frame.RxInfo[0].GatewayID)
	assert.Equal(t, int16(-50), frame.RxInfo[0].RSSI)
	assert.Equal(t, 10.5, frame.RxInfo[0].SNR)
	assert.NotNil(t, frame.DecodedPayload)
	assert.Equal(t, "AQIDBAUGBwg=", frame.RawPayload)

	expected, terr := time.Parse(time.RFC3339Nano, "2025-11-26T06:14:58.501022+00:00")
	require.NoError(t, terr)
	assert.True(t, frame.ReceivedAt.Equal(expected))
}

func TestParseMissingRxMetadata(t *testing.T) {
	parser := chirpstack.New()

	payload := `{
		"time": "2025-11-28T05:38:55.546236991+00:00",
		"deviceInfo": {
			"devEui": "ff00000000009523",
			"deviceName": "test-device",
			"applicationId": "test-app-id",
			"applicationName": "test-app"
		},
		"fPort": 2,
		"fCnt": 100,
		"confirmed": false,
		"adr": false,
		"dr": 3,
		"rxInfo": [{
			"channel": 1,
			"rfChain": 0
		}],
		"txInfo": {
			"frequency": 915000000
		},
		"object": {
			"sensor": "value"
		}
	}`

	topic := "application/test-app/device/ff00000000009523/event/up"
	frame, err := parser.Parse(topic, []byte(payload))
	require.NoError(t, err)
	require.NotNil(t, frame)

	assert.Equal(t, "ff00000000009523", frame.DevEUI.String())
	assert.Equal(t, uint8(2), frame.FPort)
	assert.Equal(t, uint32(100), frame.FCnt)
	require.Len(t, frame.RxInfo, 1)
	assert.Equal(t, "unknown", frame.RxInfo[0].GatewayID)
	assert.Equal(t, int16(0), frame.RxInfo[0].RSSI)
	assert.Equal(t, 0.0, frame.RxInfo[0].SNR)
	assert.Equal(t, uint8(1), frame.RxInfo[0].Channel)
}

func TestParseMinimal(t *testing.T) {
	parser := chirpstack.New()

	payload := `{"deviceInfo": {"devEui": "0123456789abcdef", "applicationId": "app-1"}}`

	frame, err := parser.Parse(uplinkTopic, []byte(payload))
	require.NoError(t, err)
	require.NotNil(t, frame)

	assert.Equal(t, "app-1", frame.ApplicationID)
	assert.Equal(t, uint8(0), frame.FPort)
	assert.Equal(t, uint32(0), frame.FCnt)
	assert.Equal(t, uint64(0), frame.Frequency)
	assert.False(t, frame.Confirmed)
	assert.False(t, frame.ADR)
	assert.Equal(t, uint8(0), frame.DataRate.SpreadingFactor)
	assert.Equal(t, uint32(125000), frame.DataRate.Bandwidth)
	assert.Empty(t, frame.RxInfo)
	assert.Nil(t, frame.DecodedPayload)
	assert.Empty(t, frame.RawPayload)
	assert.WithinDuration(t, time.Now().UTC(), frame.ReceivedAt, time.Minute)
}

func TestParseNotApplicable(t *testing.T) {
	parser := chirpstack.New()

	cases := []struct {
		desc    string
		topic   string
		payload string
	}{
		{
			desc:    "join event topic",
			topic:   "application/test-app/device/0123456789abcdef/event/join",
			payload: fullPayload,
		},
		{
			desc:    "unrelated topic with invalid payload",
			topic:   "some/random/topic",
			payload: "not json at all",
		},
		{
			desc:    "empty topic",
			topic:   "",
			payload: fullPayload,
		},
	}

	for _, tc := range cases {
		frame, err := parser.Parse(tc.topic, []byte(tc.payload))
		assert.NoError(t, err, fmt.Sprintf("%s: expected no error got %s\n", tc.desc, err))
		assert.Nil(t, frame, fmt.Sprintf("%s: expected no frame\n", tc.desc))
	}
}

func TestParseOversizePayload(t *testing.T) {
	parser := chirpstack.New()

	// Not even valid JSON; the size guard must reject it before decoding.
	payload := bytes.Repeat([]byte("x"), ingest.MaxPayloadSize+1)

	frame, err := parser.Parse(uplinkTopic, payload)
	assert.Nil(t, frame)
	assert.True(t, errors.Contains(err, ingest.ErrPayloadTooLarge), fmt.Sprintf("expected %s got %s\n", ingest.ErrPayloadTooLarge, err))
}

func TestParseMalformedPayload(t *testing.T) {
	parser := chirpstack.New()

	cases := []struct {
		desc    string
		payload string
	}{
		{
			desc:    "invalid JSON",
			payload: "{not-json",
		},
		{
			desc:    "missing deviceInfo",
			payload: `{"fPort": 1}`,
		},
		{
			desc:    "missing devEui",
			payload: `{"deviceInfo": {"applicationId": "app-1"}}`,
		},
		{
			desc:    "wrongly typed fCnt",
			payload: `{"deviceInfo": {"devEui": "0123456789abcdef", "applicationId": "app-1"}, "fCnt": "not-a-number"}`,
		},
	}

	for _, tc := range cases {
		frame, err := parser.Parse(uplinkTopic, []byte(tc.payload))
		assert.Nil(t, frame, fmt.Sprintf("%s: expected no frame\n", tc.desc))
		assert.True(t, errors.Contains(err, ingest.ErrMalformedJSON), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, ingest.ErrMalformedJSON, err))
	}
}

func TestParseInvalidDevEUI(t *testing.T) {
	parser := chirpstack.New()

	cases := []struct {
		desc   string
		devEUI string
	}{
		{
			desc:   "too short",
			devEUI: "0123",
		},
		{
			desc:   "too long",
			devEUI: "0123456789abcdef00",
		},
		{
			desc:   "non-hex",
			devEUI: "zzzz456789abcdef",
		},
	}

	for _, tc := range cases {
		payload := fmt.Sprintf(`{"deviceInfo": {"devEui": %q, "applicationId": "app-1"}}`, tc.devEUI)
		frame, err := parser.Parse(uplinkTopic, []byte(payload))
		assert.Nil(t, frame, fmt.Sprintf("%s: expected no frame\n", tc.desc))
		assert.True(t, errors.Contains(err, ingest.ErrInvalidDevEUI), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, ingest.ErrInvalidDevEUI, err))
	}
}

func TestParseApplicationIDFallback(t *testing.T) {
	parser := chirpstack.New()

	cases := []struct {
		desc       string
		deviceInfo string
		appID      string
	}{
		{
			desc:       "name preferred over id",
			deviceInfo: `{"devEui": "0123456789abcdef", "applicationId": "app-id", "applicationName": "app-name"}`,
			appID:      "app-name",
		},
		{
			desc:       "id when name is absent",
			deviceInfo: `{"devEui": "0123456789abcdef", "applicationId": "app-id"}`,
			appID:      "app-id",
		},
		{
			desc:       "unknown when neither exists",
			deviceInfo: `{"devEui": "0123456789abcdef"}`,
			appID:      "unknown",
		},
	}

	for _, tc := range cases {
		payload := fmt.Sprintf(`{"deviceInfo": %s}`, tc.deviceInfo)
		frame, err := parser.Parse(uplinkTopic, []byte(payload))
		require.NoError(t, err, tc.desc)
		require.NotNil(t, frame, tc.desc)
		assert.Equal(t, tc.appID, frame.ApplicationID, fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.appID, frame.ApplicationID))
	}
}

func TestParseGatewayLocation(t *testing.T) {
	parser := chirpstack.New()

	cases := []struct {
		desc        string
		location    string
		hasLocation bool
		hasAltitude bool
	}{
		{
			desc:        "latitude only",
			location:    `{"latitude": 45.0}`,
			hasLocation: false,
		},
		{
			desc:        "longitude only",
			location:    `{"longitude": 15.9}`,
			hasLocation: false,
		},
		{
			desc:        "altitude only",
			location:    `{"altitude": 120.0}`,
			hasLocation: false,
		},
		{
			desc:        "both coordinates without altitude",
			location:    `{"latitude": 45.0, "longitude": 15.9}`,
			hasLocation: true,
			hasAltitude: false,
		},
		{
			desc:        "both coordinates with altitude",
			location:    `{"latitude": 45.0, "longitude": 15.9, "altitude": 120.0}`,
			hasLocation: true,
			hasAltitude: true,
		},
	}

	for _, tc := range cases {
		payload := fmt.Sprintf(`{
			"deviceInfo": {"devEui": "0123456789abcdef", "applicationId": "app-1"},
			"rxInfo": [{"gatewayId": "gw-1", "location": %s}]
		}`, tc.location)

		frame, err := parser.Parse(uplinkTopic, []byte(payload))
		require.NoError(t, err, tc.desc)
		require.Len(t, frame.RxInfo, 1, tc.desc)

		loc := frame.RxInfo[0].Location
		if !tc.hasLocation {
			assert.Nil(t, loc, fmt.Sprintf("%s: expected no location\n", tc.desc))
			continue
		}
		require.NotNil(t, loc, fmt.Sprintf("%s: expected location\n", tc.desc))
		assert.Equal(t, 45.0, loc.Latitude, tc.desc)
		assert.Equal(t, 15.9, loc.Longitude, tc.desc)
		if tc.hasAltitude {
			require.NotNil(t, loc.Altitude, tc.desc)
			assert.Equal(t, 120.0, *loc.Altitude, tc.desc)
		} else {
			assert.Nil(t, loc.Altitude, tc.desc)
		}
	}
}

func TestParseUnparsableTimestamp(t *testing.T) {
	parser := chirpstack.New()

	payload := `{
		"time": "yesterday around noon",
		"deviceInfo": {"devEui": "0123456789abcdef", "applicationId": "app-1"}
	}`

	frame, err := parser.Parse(uplinkTopic, []byte(payload))
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.WithinDuration(t, time.Now().UTC(), frame.ReceivedAt, time.Minute)
}

func TestExtractDevEUI(t *testing.T) {
	parser := chirpstack.New()

	cases := []struct {
		desc   string
		topic  string
		devEUI string
		ok     bool
	}{
		{
			desc:   "uplink event topic",
			topic:  "application/test-app/device/abc123/event/up",
			devEUI: "abc123",
			ok:     true,
		},
		{
			desc:   "minimal four-segment topic",
			topic:  "application/test-app/device/abc123",
			devEUI: "abc123",
			ok:     true,
		},
		{
			desc:  "three segments",
			topic: "application/test-app/device",
			ok:    false,
		},
		{
			desc:  "foreign vendor topic with four segments",
			topic: "ttn-app/devices/sensor-1/up",
			ok:    false,
		},
		{
			desc:  "wrong leading segment",
			topic: "gateway/test-app/device/abc123/event/up",
			ok:    false,
		},
		{
			desc:  "empty topic",
			topic: "",
			ok:    false,
		},
	}

	for _, tc := range cases {
		devEUI, ok := parser.ExtractDevEUI(tc.topic)
		assert.Equal(t, tc.ok, ok, fmt.Sprintf("%s: expected %t got %t\n", tc.desc, tc.ok, ok))
		assert.Equal(t, tc.devEUI, devEUI, fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.devEUI, devEUI))
	}
}
