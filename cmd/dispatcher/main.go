package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brigade/internal/dispatcher/service"
	"brigade/pkg/client"
	"brigade/pkg/config"
	"brigade/pkg/kafka"
	kafka_config "brigade/pkg/kafka/config"
)

const ServiceName = "dispatcher"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	gateway := client.NewHttpClient(cfg.MessageGatewayURL)
	if err := gateway.WaitForHealthy(30 * time.Second); err != nil {
		cfg.Log.Warn("Message gateway not healthy yet, starting anyway", "error", err)
	}

	dispatcher := service.NewDispatcher(gateway, cfg)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.OutboundTopic,
		cfg.DispatcherGroupID,
		cfg.OutboundDLQTopic,
		dispatcher.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Starting dispatcher",
		"topic", cfg.OutboundTopic,
		"group_id", cfg.DispatcherGroupID,
		"gateway", cfg.MessageGatewayURL,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Warn("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Dispatcher stopped gracefully")
}
