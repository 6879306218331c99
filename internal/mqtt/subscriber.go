package mqtt

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	slogctx "github.com/veqryn/slog-context"

	"esp8266-web/pkg/types"
)

// MessageHandler stores one decoded payload. ctx carries a logger tagged
// with the topic.
type MessageHandler func(ctx context.Context, p types.ReadingPayload) error

// MQTTSubscriber is what feature modules need to attach their handler.
type MQTTSubscriber interface {
	SetMessageHandler(handler MessageHandler)
}

type Subscriber struct {
	*conn

	hmu     sync.RWMutex
	handler MessageHandler
}

func NewSubscriber(o Options, logger *slog.Logger) *Subscriber {
	s := &Subscriber{}
	// Subscribing from the connect callback restores the subscription after
	// every automatic reconnect, since sessions are clean.
	s.conn = newConn(o, logger, func() {
		go func() {
			if err := s.subscribe(); err != nil {
				logger.Error("mqtt subscribe failed", "topic", o.Topic, "error", err)
			}
		}()
	})
	return s
}

// SetMessageHandler must be called before Connect so queued messages are not
// dropped right after CONNACK.
func (s *Subscriber) SetMessageHandler(handler MessageHandler) {
	s.hmu.Lock()
	s.handler = handler
	s.hmu.Unlock()
}

// Connect establishes the broker connection. The topic subscription follows
// from the connect callback.
func (s *Subscriber) Connect(ctx context.Context) error {
	return s.connect(ctx)
}

func (s *Subscriber) subscribe() error {
	topic := s.opts.Topic
	token := s.client.Subscribe(topic, QoS, func(_ paho.Client, msg paho.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if err := waitToken(token, 5*time.Second, "subscribe to "+topic); err != nil {
		return err
	}
	s.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", QoS)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	logger := s.logger.With("topic", topic)
	logger.Debug("received mqtt message", "size", len(payload))

	var p types.ReadingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		logger.Warn("failed to parse reading message", "error", err, "payload", string(payload))
		return
	}

	s.hmu.RLock()
	handler := s.handler
	s.hmu.RUnlock()
	if handler == nil {
		logger.Warn("no handler for mqtt message")
		return
	}

	ctx := slogctx.NewCtx(context.Background(), logger)
	if err := handler(ctx, p); err != nil {
		logger.Error("message handler failed", "error", err)
	}
}

// Disconnect unsubscribes and closes the connection. Safe to call more than once.
func (s *Subscriber) Disconnect() {
	s.stop(func() {
		_ = waitToken(s.client.Unsubscribe(s.opts.Topic), 2*time.Second, "unsubscribe")
	})
	s.logger.Info("mqtt subscriber disconnected")
}
