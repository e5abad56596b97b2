// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/loradb/loradb"
)

var _ loradb.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     loradb.Service
}

// MetricsMiddleware instruments core service by tracking request count and latency.
func MetricsMiddleware(svc loradb.Service, counter metrics.Counter, latency metrics.Histogram) loradb.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) CreateDevice(ctx context.Context, streamID, devEUI string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "create_device").Add(1)
		mm.latency.With("method", "create_device").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CreateDevice(ctx, streamID, devEUI)
}

func (mm *metricsMiddleware) UpdateDevice(ctx context.Context, streamID, devEUI string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "update_device").Add(1)
		mm.latency.With("method", "update_device").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.UpdateDevice(ctx, streamID, devEUI)
}

func (mm *metricsMiddleware) RemoveDevice(ctx context.Context, streamID string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "remove_device").Add(1)
		mm.latency.With("method", "remove_device").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.RemoveDevice(ctx, streamID)
}

func (mm *metricsMiddleware) CreateApplication(ctx context.Context, chanID, appID string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "create_application").Add(1)
		mm.latency.With("method", "create_application").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CreateApplication(ctx, chanID, appID)
}

func (mm *metricsMiddleware) UpdateApplication(ctx context.Context, chanID, appID string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "update_application").Add(1)
		mm.latency.With("method", "update_application").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.UpdateApplication(ctx, chanID, appID)
}

func (mm *metricsMiddleware) RemoveApplication(ctx context.Context, chanID string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "remove_application").Add(1)
		mm.latency.With("method", "remove_application").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.RemoveApplication(ctx, chanID)
}

func (mm *metricsMiddleware) Publish(ctx context.Context, topic string, payload []byte) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "publish").Add(1)
		mm.latency.With("method", "publish").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Publish(ctx, topic, payload)
}
