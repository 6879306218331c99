package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// New builds the process logger: colored tint output for dev builds, JSON otherwise.
// The handler is wrapped by slogctx so attributes stored in a context are emitted.
func New(level slog.Level, appEnv, version, appName string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, appEnv, version, appName)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, level slog.Level, appEnv, version, appName string) *slog.Logger {
	if version == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(slogctx.NewHandler(h, nil)).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(slogctx.NewHandler(h, nil)).With(
		"app", appName,
		"version", version,
		"env", appEnv,
	)
}
