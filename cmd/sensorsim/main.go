package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"esp8266-web/internal/config"
	"esp8266-web/internal/logging"
	"esp8266-web/internal/mqtt"
	"esp8266-web/internal/sim"
	"esp8266-web/pkg/client"
	"esp8266-web/pkg/types"
)

const appName = "sensorsim"

var version = "dev"

func main() {
	cfg, err := sim.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	level := slog.LevelInfo
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if level, err = config.ParseLogLevel(s); err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
	}
	logger := logging.New(level, "sim", version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "mode", cfg.Mode, "interval", cfg.Interval)
	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func run(ctx context.Context, cfg sim.Config, logger *slog.Logger) error {
	var sink sim.Sink
	switch cfg.Mode {
	case sim.ModeMQTT:
		pub := mqtt.NewPublisher(mqtt.Options{
			Broker:   cfg.MQTTBroker,
			Port:     cfg.MQTTPort,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.MQTTTopic,
		}, logger)
		defer pub.Disconnect()

		if err := pub.Connect(ctx); err != nil {
			return err
		}
		sink = sim.SinkFunc(func(_ context.Context, p types.ReadingPayload) error {
			return pub.PublishReading(p)
		})
	default:
		c := client.New(cfg.BaseURL,
			client.WithLogger(logger),
			client.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		)
		sink = sim.HTTPSink(c, cfg.SecretKey)
	}

	return sim.Run(ctx, sim.NewWalker(cfg.Seed), sink, cfg.Interval, logger)
}
