package sim

import (
	"context"
	"log/slog"
	"time"

	"esp8266-web/pkg/client"
	"esp8266-web/pkg/types"
)

// Sink delivers one payload to the server.
type Sink interface {
	Send(ctx context.Context, p types.ReadingPayload) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, p types.ReadingPayload) error

func (f SinkFunc) Send(ctx context.Context, p types.ReadingPayload) error { return f(ctx, p) }

// HTTPSink posts payloads with the readings client.
func HTTPSink(c *client.Client, secretKey string) Sink {
	return SinkFunc(func(ctx context.Context, p types.ReadingPayload) error {
		_, err := c.PostReading(ctx, secretKey, p)
		return err
	})
}

// Run sends one reading immediately and then one per interval until ctx is
// done. Failed sends are logged and the walk goes on.
func Run(ctx context.Context, w *Walker, sink Sink, interval time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := w.Next()
		if err := sink.Send(ctx, p); err != nil {
			logger.Warn("send reading failed", "error", err)
		} else {
			logger.Info("reading sent",
				"temp_co", p.TempCo,
				"temp_room", p.TempRoom,
				"humidity", p.Humidity,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
