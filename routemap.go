// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

package loradb

import "context"

// RouteMapRepository stores the mapping between network-server identifiers
// (device EUIs, application IDs) and internal stream identifiers.
//
//go:generate mockery --name RouteMapRepository --filename routes.go --quiet --note "Copyright (c) LoRaDB Contributors"
type RouteMapRepository interface {
	// Save stores the pair as a bidirectional route-map.
	Save(ctx context.Context, streamID, extID string) error

	// Get returns the internal stream ID for a given external ID.
	Get(ctx context.Context, extID string) (string, error)

	// Remove removes a mapping from the store.
	Remove(ctx context.Context, streamID string) error
}
