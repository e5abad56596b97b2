// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package redis contains the Redis client setup shared by service binaries.
package redis

import "github.com/go-redis/redis/v8"

// Connect creates a Redis client from a redis:// URL.
func Connect(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return redis.NewClient(opts), nil
}
