package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"esp8266-web/internal/config"
	"esp8266-web/pkg/client"
	"esp8266-web/pkg/types"
)

func startServer(t *testing.T) string {
	t.Helper()
	cfg := config.Config{
		AppEnv:          "dev",
		LogLevel:        slog.LevelInfo,
		HTTPAddr:        "127.0.0.1:0",
		SecretKey:       "test-secret",
		CORSAllowOrigin: "*",
		DBDriver:        "sqlite3",
		SQLitePath:      filepath.Join(t.TempDir(), "app.db"),
		DBMaxOpenConns:  1,
		DBMaxIdleConns:  1,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, logger, ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		cancel()
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("server did not start")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("Run returned %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("Run did not stop")
		}
	})
	return "http://" + addr
}

func TestRun_PostThenFetch(t *testing.T) {
	base := startServer(t)
	c := client.New(base, client.WithValidation())
	ctx := context.Background()

	for _, ts := range []int64{100, 300, 200} {
		_, err := c.PostReading(ctx, "test-secret", types.ReadingPayload{TempCo: 20, TempRoom: 19, Humidity: 50, Timestamp: types.Int64(ts)})
		if err != nil {
			t.Fatalf("PostReading(%d): %v", ts, err)
		}
	}

	got, err := c.GetReadings(ctx, types.Query{})
	if err != nil {
		t.Fatalf("GetReadings: %v", err)
	}
	if len(got) != 3 || got[0].Timestamp != 300 || got[1].Timestamp != 200 || got[2].Timestamp != 100 {
		t.Errorf("readings = %+v; want timestamps 300, 200, 100", got)
	}

	got, err = c.GetReadings(ctx, types.Query{From: types.Int64(150), Limit: types.Int64(1)})
	if err != nil {
		t.Fatalf("GetReadings filtered: %v", err)
	}
	if len(got) != 1 || got[0].Timestamp != 300 {
		t.Errorf("filtered = %+v; want only timestamp 300", got)
	}
}

func TestRun_RejectsBadSecret(t *testing.T) {
	base := startServer(t)
	c := client.New(base)

	_, err := c.PostReading(context.Background(), "wrong", types.ReadingPayload{Humidity: 1})
	var se *client.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusForbidden {
		t.Fatalf("PostReading err = %v; want 403 StatusError", err)
	}
}

func TestRun_HealthAndTotalCount(t *testing.T) {
	base := startServer(t)

	resp, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}

	resp, err = http.Get(base + "/data")
	if err != nil {
		t.Fatalf("GET /data: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if got := resp.Header.Get("X-Total-Count"); got != "0" {
		t.Errorf("X-Total-Count = %q; want 0", got)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("body = %q; want []", raw)
	}
}
