package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"esp8266-web/internal/config"
	"esp8266-web/internal/db"
	"esp8266-web/internal/db/migrate"
	"esp8266-web/internal/httpapi"
	"esp8266-web/internal/modules/readings"
	"esp8266-web/internal/mqtt"
)

// Run serves the readings API until ctx is cancelled. When ready is non-nil it
// receives the bound listen address once the server accepts connections.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, ready chan<- string) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"corsAllowOrigin", cfg.CORSAllowOrigin,
		"dbDriver", cfg.DBDriver,
		"sqlitePath", cfg.SQLitePath,
		"dbMaxOpenConns", cfg.DBMaxOpenConns,
		"dbMaxIdleConns", cfg.DBMaxIdleConns,
		"dbConnMaxLifetime", cfg.DBConnMaxLifetime,
		"mqttEnabled", cfg.MQTTEnabled,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn, cfg.DBDriver); err != nil {
		return err
	}
	logger.Info("database ready", "driver", cfg.DBDriver)

	mux := httpapi.NewMux(dbConn)

	// The handler is attached before Connect so the subscription made on
	// CONNACK already has somewhere to deliver queued messages.
	var subscriber *mqtt.Subscriber
	settings := readings.Settings{
		Driver:     cfg.DBDriver,
		SecretKey:  cfg.SecretKey,
		CORSOrigin: cfg.CORSAllowOrigin,
	}
	if cfg.MQTTEnabled {
		subscriber = mqtt.NewSubscriber(mqtt.Options{
			Broker:   cfg.MQTTBroker,
			Port:     cfg.MQTTPort,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.MQTTTopic,
		}, logger)
		readings.RegisterFeature(mux, dbConn, settings, subscriber)

		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			// HTTP ingestion and reads keep working without a broker.
			logger.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	} else {
		readings.RegisterFeature(mux, dbConn, settings, nil)
	}

	srv := httpapi.NewServer(cfg, logger, mux)

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if subscriber != nil {
		logger.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
