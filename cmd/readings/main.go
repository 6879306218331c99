package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"esp8266-web/internal/cli"
	"esp8266-web/internal/config"
	"esp8266-web/internal/logging"
)

const appName = "readings"

var version = "dev"

func main() {
	level := slog.LevelWarn
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		l, err := config.ParseLogLevel(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(2)
		}
		level = l
	}
	logger := logging.NewWithWriter(os.Stderr, level, "cli", version, appName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr, logger); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "readings: %v\n", err)
		os.Exit(1)
	}
}
