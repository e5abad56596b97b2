// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package api contains the service decorators and HTTP surface of the
// adapter.
package api

import (
	"net/http"

	"github.com/go-zoo/bone"
	"github.com/loradb/loradb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MakeHandler returns a HTTP handler for API endpoints.
func MakeHandler(instanceID string) http.Handler {
	r := bone.New()
	r.GetFunc("/health", loradb.Health("loradb-adapter", instanceID))
	r.Handle("/metrics", promhttp.Handler())

	return r
}
