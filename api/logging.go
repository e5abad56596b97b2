// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/loradb/loradb"
)

var _ loradb.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    loradb.Service
}

// LoggingMiddleware adds logging facilities to the core service.
func LoggingMiddleware(svc loradb.Service, logger *slog.Logger) loradb.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm loggingMiddleware) CreateDevice(ctx context.Context, streamID, devEUI string) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("create_device for stream %s and dev-eui %s took %s to complete", streamID, devEUI, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.CreateDevice(ctx, streamID, devEUI)
}

func (lm loggingMiddleware) UpdateDevice(ctx context.Context, streamID, devEUI string) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("update_device for stream %s and dev-eui %s took %s to complete", streamID, devEUI, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.UpdateDevice(ctx, streamID, devEUI)
}

func (lm loggingMiddleware) RemoveDevice(ctx context.Context, streamID string) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("remove_device for stream %s took %s to complete", streamID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.RemoveDevice(ctx, streamID)
}

func (lm loggingMiddleware) CreateApplication(ctx context.Context, chanID, appID string) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("create_application for channel %s and app %s took %s to complete", chanID, appID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.CreateApplication(ctx, chanID, appID)
}

func (lm loggingMiddleware) UpdateApplication(ctx context.Context, chanID, appID string) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("update_application for channel %s and app %s took %s to complete", chanID, appID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.UpdateApplication(ctx, chanID, appID)
}

func (lm loggingMiddleware) RemoveApplication(ctx context.Context, chanID string) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("remove_application for channel %s took %s to complete", chanID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.RemoveApplication(ctx, chanID)
}

func (lm loggingMiddleware) Publish(ctx context.Context, topic string, payload []byte) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("publish for topic %s took %s to complete", topic, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.Publish(ctx, topic, payload)
}
