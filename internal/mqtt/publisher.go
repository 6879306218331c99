package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"esp8266-web/pkg/types"
)

var errNotConnected = errors.New("mqtt client not connected")

// Publisher sends reading payloads to the configured topic.
type Publisher struct {
	*conn
}

func NewPublisher(o Options, logger *slog.Logger) *Publisher {
	return &Publisher{conn: newConn(o, logger, nil)}
}

// Connect waits for the initial connection, respecting ctx and Disconnect.
func (p *Publisher) Connect(ctx context.Context) error {
	return p.connect(ctx)
}

// PublishReading publishes r as JSON with QoS 1, not retained.
func (p *Publisher) PublishReading(r types.ReadingPayload) error {
	if !p.IsConnected() {
		return errNotConnected
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	topic := p.opts.Topic
	if err := waitToken(p.client.Publish(topic, QoS, false, data), 5*time.Second, "publish to "+topic); err != nil {
		p.logger.Error("failed to publish reading", "topic", topic, "error", err)
		return err
	}

	p.logger.Debug("published reading", "topic", topic, "size", len(data))
	return nil
}

// Disconnect closes the connection. Safe to call more than once.
func (p *Publisher) Disconnect() {
	p.stop(nil)
	p.logger.Info("mqtt publisher disconnected")
}
