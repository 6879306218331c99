// Package cli implements the readings command: it fetches stored readings
// from a running server and prints them.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"esp8266-web/pkg/client"
	"esp8266-web/pkg/types"
)

// ErrUsage is returned for bad flags or settings; the problem has already
// been printed to stderr.
var ErrUsage = errors.New("usage error")

type options struct {
	configFile string
	overrides  map[string]any
	query      types.Query
}

func parseArgs(args []string, now time.Time, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("readings", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "config file (yaml, json or toml)")
	baseURL := fs.String("base-url", "", "server base URL (default http://localhost:8080)")
	output := fs.String("o", "", "output format: table, json or yaml")
	timeout := fs.Duration("timeout", 0, "HTTP timeout (0 disables)")
	validate := fs.Bool("validate", false, "check each reading before printing")
	from := fs.Int64("from", 0, "only readings at or after this Unix time")
	to := fs.Int64("to", 0, "only readings at or before this Unix time")
	since := fs.Duration("since", 0, "only readings newer than this duration ago")
	limit := fs.Int64("limit", 0, "page size (server default 10, max 500)")
	offset := fs.Int64("offset", 0, "rows to skip")

	if err := fs.Parse(args); err != nil {
		return options{}, ErrUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return options{}, ErrUsage
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["from"] && set["since"] {
		fmt.Fprintln(stderr, "-from and -since are mutually exclusive")
		return options{}, ErrUsage
	}

	opts := options{configFile: *configFile, overrides: make(map[string]any)}
	if set["base-url"] {
		opts.overrides["base_url"] = *baseURL
	}
	if set["o"] {
		opts.overrides["output"] = *output
	}
	if set["timeout"] {
		opts.overrides["timeout"] = *timeout
	}
	if set["validate"] {
		opts.overrides["validate"] = *validate
	}

	if set["from"] {
		opts.query.From = types.Int64(*from)
	}
	if set["since"] {
		opts.query.From = types.Int64(now.Add(-*since).Unix())
	}
	if set["to"] {
		opts.query.To = types.Int64(*to)
	}
	if set["limit"] {
		opts.query.Limit = types.Int64(*limit)
	}
	if set["offset"] {
		opts.query.Offset = types.Int64(*offset)
	}
	return opts, nil
}

// Run executes the readings command with args (without the program name).
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, logger *slog.Logger) error {
	opts, err := parseArgs(args, time.Now(), stderr)
	if err != nil {
		return err
	}

	settings, err := loadSettings(opts.configFile, opts.overrides)
	if err != nil {
		if errors.Is(err, ErrUsage) {
			fmt.Fprintln(stderr, err)
		}
		return err
	}

	clientOpts := []client.Option{
		client.WithHTTPClient(&http.Client{Timeout: settings.Timeout}),
		client.WithLogger(logger),
	}
	if settings.Validate {
		clientOpts = append(clientOpts, client.WithValidation())
	}
	c := client.New(settings.BaseURL, clientOpts...)

	readings, err := c.GetReadings(ctx, opts.query)
	if err != nil {
		return err
	}
	logger.Debug("readings fetched", "count", len(readings))

	return render(stdout, settings.Output, readings)
}
