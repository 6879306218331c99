package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	slogctx "github.com/veqryn/slog-context"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, "prod", "1.2.3", "esp8266-web")

	logger.Info("hello", "k", "v")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]string{"msg": "hello", "app": "esp8266-web", "version": "1.2.3", "env": "prod", "k": "v"} {
		if got[key] != want {
			t.Errorf("%s = %v; want %q", key, got[key], want)
		}
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelWarn, "prod", "1.0.0", "app")

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %q", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestNew_DevUsesTint(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug, "dev", "dev", "esp8266-web")

	logger.Debug("tinted")

	out := buf.String()
	if !strings.Contains(out, "tinted") {
		t.Fatalf("output = %q; want message", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("dev output should not be JSON: %q", out)
	}
}

func TestNew_ContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, "prod", "1.0.0", "app")

	ctx := slogctx.Prepend(context.Background(), "request_id", "abc")
	logger.InfoContext(ctx, "with ctx")

	if !strings.Contains(buf.String(), `"request_id":"abc"`) {
		t.Errorf("context attribute missing: %q", buf.String())
	}
}
