package service

import (
	"context"

	"esp8266-web/internal/metrics"
	"esp8266-web/internal/mqtt"
	"esp8266-web/pkg/types"
)

// Register stores every reading the subscriber receives.
func (s *Service) Register(subscriber mqtt.MQTTSubscriber) {
	subscriber.SetMessageHandler(func(ctx context.Context, p types.ReadingPayload) error {
		_, err := s.Ingest(ctx, metrics.SourceMQTT, p)
		return err
	})
}
