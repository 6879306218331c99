// Package client talks to the esp8266-web data endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"esp8266-web/pkg/types"
)

const dataPath = "/data"

// StatusError is returned when the server answers outside the 2xx range.
type StatusError struct {
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return "failed to fetch data: " + e.StatusText
}

// ValidationError is returned by GetReadings when validation is enabled and
// the decoded payload does not match the Reading shape.
type ValidationError struct {
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("reading %d: %v", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client. The default has no timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.h = h
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithValidation makes GetReadings check every decoded reading and reject
// duplicate ids.
func WithValidation() Option {
	return func(c *Client) {
		c.validate = validator.New()
	}
}

// Client is safe for concurrent use; it holds no per-call state.
type Client struct {
	base     string
	h        *http.Client
	logger   *slog.Logger
	validate *validator.Validate
}

// New returns a client for base. base is used verbatim, it is not validated.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:   base,
		h:      &http.Client{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.base
}

// ReadingsURL builds GET /data's address for q.
func (c *Client) ReadingsURL(q types.Query) string {
	u := c.base + dataPath
	if qs := encodeQuery(q); qs != "" {
		u += "?" + qs
	}
	return u
}

func encodeQuery(q types.Query) string {
	v := url.Values{}
	set := func(key string, p *int64) {
		if p != nil {
			v.Set(key, strconv.FormatInt(*p, 10))
		}
	}
	set("from", q.From)
	set("to", q.To)
	set("limit", q.Limit)
	set("offset", q.Offset)
	return v.Encode()
}

// GetReadings performs GET <base>/data with the fields of q that are set.
func (c *Client) GetReadings(ctx context.Context, q types.Query) ([]types.Reading, error) {
	u := c.ReadingsURL(q)
	c.logger.Debug("fetching readings", "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.h.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp)
	}

	var readings []types.Reading
	if err := decodeBody(resp.Body, &readings); err != nil {
		return nil, err
	}

	if c.validate != nil {
		if err := c.validateReadings(readings); err != nil {
			return nil, err
		}
	}
	return readings, nil
}

// PostReading stores one reading through POST <base>/data.
func (c *Client) PostReading(ctx context.Context, secretKey string, p types.ReadingPayload) (types.Reading, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return types.Reading{}, fmt.Errorf("marshal reading: %w", err)
	}

	u := c.base + dataPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return types.Reading{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Secret-Key", secretKey)

	resp, err := c.h.Do(req)
	if err != nil {
		return types.Reading{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.Reading{}, newStatusError(resp)
	}

	var stored types.Reading
	if err := decodeBody(resp.Body, &stored); err != nil {
		return types.Reading{}, err
	}
	return stored, nil
}

// decodeBody requires the whole body to be one JSON value; trailing content
// is a *json.SyntaxError.
func decodeBody(r io.Reader, v any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return json.Unmarshal(body, v)
}

func (c *Client) validateReadings(readings []types.Reading) error {
	seen := make(map[int64]struct{}, len(readings))
	for i, r := range readings {
		if err := c.validate.Struct(r); err != nil {
			return &ValidationError{Index: i, Err: err}
		}
		if _, dup := seen[r.ID]; dup {
			return &ValidationError{Index: i, Err: fmt.Errorf("duplicate id %d", r.ID)}
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// newStatusError keeps only the reason phrase of resp.Status ("404 Not Found" -> "Not Found").
func newStatusError(resp *http.Response) *StatusError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &StatusError{StatusCode: resp.StatusCode, StatusText: text}
}
