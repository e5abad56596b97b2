// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

package frames

import "github.com/brocaar/lorawan"

// DevEUI is a globally unique 64-bit device identifier, rendered as 16
// lowercase hex characters.
type DevEUI = lorawan.EUI64

// ParseDevEUI validates and parses a device EUI string. Wrong length or
// non-hex input yields an error, never a defaulted value.
func ParseDevEUI(s string) (DevEUI, error) {
	var eui lorawan.EUI64
	if err := eui.UnmarshalText([]byte(s)); err != nil {
		return DevEUI{}, err
	}

	return eui, nil
}
