package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	slogctx "github.com/veqryn/slog-context"

	"esp8266-web/internal/metrics"
	"esp8266-web/internal/modules/readings/repository"
	"esp8266-web/pkg/types"
)

// ErrInvalidPayload marks payloads refused before storage.
var ErrInvalidPayload = errors.New("invalid reading payload")

// Service stores device payloads, whichever transport delivered them.
type Service struct {
	repository repository.ReadingsRepository
	validate   *validator.Validate
	now        func() time.Time
}

func NewService(repository repository.ReadingsRepository) *Service {
	return &Service{
		repository: repository,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// Ingest validates p, stamps it with the current Unix time when it carries no
// timestamp, and stores it. source labels metrics ("http", "mqtt").
func (s *Service) Ingest(ctx context.Context, source string, p types.ReadingPayload) (types.Reading, error) {
	logger := slogctx.FromCtx(ctx)

	if err := s.validate.Struct(p); err != nil {
		metrics.ReadingsRejected.WithLabelValues(source, "invalid").Inc()
		return types.Reading{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ts := s.now().UTC().Unix()
	if p.Timestamp != nil {
		ts = *p.Timestamp
	}

	rec, err := s.repository.InsertReading(ctx, p.TempCo, p.TempRoom, p.Humidity, ts)
	if err != nil {
		metrics.ReadingsRejected.WithLabelValues(source, "storage").Inc()
		return types.Reading{}, err
	}

	metrics.ObserveReading(source, rec)
	logger.Info("reading stored",
		"source", source,
		"id", rec.ID,
		"timestamp", rec.Timestamp,
		"temp_co", rec.TempCo,
		"temp_room", rec.TempRoom,
		"humidity", rec.Humidity,
	)
	return rec, nil
}
