// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package main contains the loradb adapter main function.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	mqttpaho "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-redis/redis/v8"
	"github.com/loradb/loradb"
	"github.com/loradb/loradb/api"
	"github.com/loradb/loradb/internal"
	redisclient "github.com/loradb/loradb/internal/clients/redis"
	"github.com/loradb/loradb/internal/server"
	httpserver "github.com/loradb/loradb/internal/server/http"
	ldlog "github.com/loradb/loradb/logger"
	"github.com/loradb/loradb/mqtt"
	"github.com/loradb/loradb/pkg/ingest"
	"github.com/loradb/loradb/pkg/ingest/chirpstack"
	"github.com/loradb/loradb/pkg/ingest/ttn"
	"github.com/loradb/loradb/pkg/messaging"
	"github.com/loradb/loradb/pkg/messaging/nats"
	"github.com/loradb/loradb/pkg/uuid"
	ldredis "github.com/loradb/loradb/redis"
	"golang.org/x/sync/errgroup"
)

const (
	svcName        = "loradb-adapter"
	envPrefixHTTP  = "LORADB_ADAPTER_HTTP_"
	defSvcHTTPPort = "9017"

	devicesRMPrefix = "device"
	appsRMPrefix    = "application"
)

type config struct {
	LogLevel       string        `env:"LORADB_ADAPTER_LOG_LEVEL"          envDefault:"info"`
	LoraMsgURL     string        `env:"LORADB_ADAPTER_MESSAGES_URL"       envDefault:"tcp://localhost:1883"`
	LoraMsgUser    string        `env:"LORADB_ADAPTER_MESSAGES_USER"      envDefault:""`
	LoraMsgPass    string        `env:"LORADB_ADAPTER_MESSAGES_PASS"      envDefault:""`
	LoraMsgTopics  []string      `env:"LORADB_ADAPTER_MESSAGES_TOPICS"    envDefault:"application/+/device/+/event/up,+/devices/+/up" envSeparator:","`
	LoraMsgTimeout time.Duration `env:"LORADB_ADAPTER_MESSAGES_TIMEOUT"   envDefault:"30s"`
	BrokerURL      string        `env:"LORADB_BROKER_URL"                 envDefault:"nats://localhost:4222"`
	RouteMapURL    string        `env:"LORADB_ADAPTER_ROUTE_MAP_URL"      envDefault:"redis://localhost:6379/0"`
	InstanceID     string        `env:"LORADB_ADAPTER_INSTANCE_ID"        envDefault:""`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load %s configuration : %s", svcName, err)
	}

	logger, err := ldlog.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %s", err.Error())
	}

	var exitCode int
	defer ldlog.ExitWithError(&exitCode)

	if cfg.InstanceID == "" {
		if cfg.InstanceID, err = uuid.New().ID(); err != nil {
			logger.Error(fmt.Sprintf("failed to generate instanceID: %s", err))
			exitCode = 1
			return
		}
	}

	httpServerConfig := server.Config{Port: defSvcHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err))
		exitCode = 1
		return
	}

	rmConn, err := redisclient.Connect(cfg.RouteMapURL)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to setup route map redis client : %s", err))
		exitCode = 1
		return
	}
	defer rmConn.Close()

	pub, err := nats.NewPublisher(cfg.BrokerURL)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect to message broker: %s", err))
		exitCode = 1
		return
	}
	defer pub.Close()

	svc := newService(pub, rmConn, logger)

	mqttConn, err := connectToMQTTBroker(cfg.LoraMsgURL, cfg.LoraMsgUser, cfg.LoraMsgPass, cfg.LoraMsgTimeout, logger)
	if err != nil {
		logger.Error(err.Error())
		exitCode = 1
		return
	}

	if err := subscribeToBroker(svc, mqttConn, cfg.LoraMsgTimeout, cfg.LoraMsgTopics, logger); err != nil {
		logger.Error(fmt.Sprintf("failed to subscribe to network-server MQTT broker: %s", err))
		exitCode = 1
		return
	}

	hs := httpserver.New(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("loradb adapter terminated: %s", err))
	}
}

func connectToMQTTBroker(burl, user, password string, timeout time.Duration, logger *slog.Logger) (mqttpaho.Client, error) {
	opts := mqttpaho.NewClientOptions()
	opts.AddBroker(burl)
	opts.SetUsername(user)
	opts.SetPassword(password)
	opts.SetOnConnectHandler(func(_ mqttpaho.Client) {
		logger.Info("connected to network-server MQTT broker")
	})
	opts.SetConnectionLostHandler(func(_ mqttpaho.Client, err error) {
		logger.Error(fmt.Sprintf("MQTT connection lost: %s", err))
	})

	client := mqttpaho.NewClient(opts)

	if token := client.Connect(); token.WaitTimeout(timeout) && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %s", token.Error())
	}

	return client, nil
}

func subscribeToBroker(svc loradb.Service, mc mqttpaho.Client, timeout time.Duration, topics []string, logger *slog.Logger) error {
	mqttBroker := mqtt.NewBroker(svc, mc, timeout, logger)
	for _, topic := range topics {
		if err := mqttBroker.Subscribe(topic); err != nil {
			return fmt.Errorf("failed to subscribe to topic %s: %s", topic, err)
		}
		logger.Info(fmt.Sprintf("subscribed to topic %s", topic))
	}

	return nil
}

func newService(pub messaging.Publisher, rmConn *redis.Client, logger *slog.Logger) loradb.Service {
	devicesRM := newRouteMapRepository(rmConn, devicesRMPrefix, logger)
	appsRM := newRouteMapRepository(rmConn, appsRMPrefix, logger)

	parsers := ingest.NewDispatcher(chirpstack.New(), ttn.New())

	svc := loradb.New(pub, parsers, devicesRM, appsRM)
	svc = api.LoggingMiddleware(svc, logger)
	counter, latency := internal.MakeMetrics("loradb_adapter", "api")
	svc = api.MetricsMiddleware(svc, counter, latency)

	return svc
}

func newRouteMapRepository(client *redis.Client, prefix string, logger *slog.Logger) loradb.RouteMapRepository {
	logger.Info(fmt.Sprintf("connected to %s Redis route-map", prefix))
	return ldredis.NewRouteMapRepository(client, prefix)
}
