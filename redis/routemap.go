// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package redis provides a Redis-backed route-map repository.
package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/loradb/loradb"
)

var _ loradb.RouteMapRepository = (*routerMap)(nil)

type routerMap struct {
	client *redis.Client
	prefix string
}

// NewRouteMapRepository returns a Redis route-map repository.
func NewRouteMapRepository(client *redis.Client, prefix string) loradb.RouteMapRepository {
	return &routerMap{
		client: client,
		prefix: prefix,
	}
}

func (rm *routerMap) Save(ctx context.Context, streamID, extID string) error {
	skey := fmt.Sprintf("%s:%s", rm.prefix, streamID)
	if err := rm.client.Set(ctx, skey, extID, 0).Err(); err != nil {
		return err
	}

	ekey := fmt.Sprintf("%s:%s", rm.prefix, extID)

	return rm.client.Set(ctx, ekey, streamID, 0).Err()
}

func (rm *routerMap) Get(ctx context.Context, extID string) (string, error) {
	ekey := fmt.Sprintf("%s:%s", rm.prefix, extID)

	return rm.client.Get(ctx, ekey).Result()
}

func (rm *routerMap) Remove(ctx context.Context, streamID string) error {
	skey := fmt.Sprintf("%s:%s", rm.prefix, streamID)
	extID, err := rm.client.Get(ctx, skey).Result()
	if err != nil {
		return err
	}

	ekey := fmt.Sprintf("%s:%s", rm.prefix, extID)

	return rm.client.Del(ctx, skey, ekey).Err()
}
