package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"vizin/internal/notifications"
	"vizin/pkg/config"
	"vizin/pkg/kafka"
	kafka_config "vizin/pkg/kafka/config"
	kafka_middleware "vizin/pkg/kafka/middleware"
	"vizin/pkg/obs"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting notifier")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracerConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to initialize tracing", "error", err)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	handler := notifications.NewHandler(notifications.NewLogNotifier(cfg.Log), cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Log, kafkaCfg.EventsTopic, kafkaCfg.ConsumerGroup, kafkaCfg.DLQTopic, handler.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		cfg.Log.Error("Failed to flush traces", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
