package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"gleam/internal/notifier"
	"gleam/pkg/config"
	"gleam/pkg/kafka"
	kafka_config "gleam/pkg/kafka/config"
)

const ServiceName = "gleam-notifier"

func main() {
	cfg := config.Load(ServiceName)

	if cfg.KafkaDisabled {
		cfg.Log.Fatal("Notifier requires Kafka; unset KAFKA_DISABLED")
	}

	svc := notifier.New(cfg.Log)
	consumer, err := kafka.NewConsumer(kafka_config.Load(), cfg.KafkaTopic, cfg.KafkaGroupID, svc.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Notifier consuming booking events",
		"topic", cfg.KafkaTopic,
		"group_id", cfg.KafkaGroupID,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Warn("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
