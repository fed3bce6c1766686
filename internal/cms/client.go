package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/RBoekdrukker/imc-frontend/internal/observability"
	"github.com/RBoekdrukker/imc-frontend/internal/requestctx"
)

// ErrNotFound is returned when a CMS resource cannot be located.
var ErrNotFound = errors.New("cms: not found")

const (
	defaultTimeout    = 5 * time.Second
	defaultContentDir = "content"
	metricNamespace   = "github.com/RBoekdrukker/imc-frontend/internal/cms"
)

// StatusError reports a non-2xx answer from the content API.
type StatusError struct {
	Resource string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms: fetch %s failed: %d", e.Resource, e.Status)
}

// Config configures a Client. An empty BaseURL serves content from ContentDir instead.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	ContentDir string
	HTTPClient *http.Client
	// Meter records fetch latency. Nil uses the global meter provider.
	Meter metric.Meter
}

// Client provides read-only access to the headless content API.
type Client struct {
	baseURL    string
	token      string
	contentDir string
	http       *http.Client

	latency        metric.Float64Histogram
	latencyEnabled bool
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	dir := strings.TrimSpace(cfg.ContentDir)
	if dir == "" {
		dir = defaultContentDir
	}
	meter := cfg.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(metricNamespace)
	}
	latency, err := meter.Float64Histogram(
		"cms.fetch.latency",
		metric.WithDescription("Latency of content API requests"),
		metric.WithUnit("ms"),
	)
	return &Client{
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		contentDir:     dir,
		http:           hc,
		latency:        latency,
		latencyEnabled: err == nil,
	}
}

// Remote reports whether the client talks to a content API rather than local files.
func (c *Client) Remote() bool {
	return c != nil && c.baseURL != ""
}

// ContentDir returns the directory used for local content.
func (c *Client) ContentDir() string {
	if c == nil {
		return defaultContentDir
	}
	return c.contentDir
}

// Fetch GETs {base}/{resource} with params as the query string and decodes the "data"
// member of the response envelope into out.
func (c *Client) Fetch(ctx context.Context, resource string, params url.Values, out any) (err error) {
	if !c.Remote() {
		return fmt.Errorf("cms: fetch %s: no base url configured", resource)
	}
	resource = strings.TrimLeft(resource, "/")

	ctx, span := observability.StartSpan(ctx, "cms.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("cms.resource", resource)),
	)
	defer func() { observability.EndSpan(span, err) }()

	endpoint, err := url.JoinPath(c.baseURL, resource)
	if err != nil {
		return fmt.Errorf("cms: build url for %s: %w", resource, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("cms: build request for %s: %w", resource, err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.recordLatency(ctx, resource, 0, time.Since(start))
		return fmt.Errorf("cms: fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.recordLatency(ctx, resource, resp.StatusCode, elapsed)
	requestctx.Logger(ctx).Debug("cms fetch",
		zap.String("resource", resource),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", elapsed),
	)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %w", ErrNotFound, &StatusError{Resource: resource, Status: resp.StatusCode})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Resource: resource, Status: resp.StatusCode}
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("cms: decode %s: %w", resource, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" || out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("cms: decode %s data: %w", resource, err)
	}
	return nil
}

// recordLatency reports one request. status is 0 when no response arrived.
func (c *Client) recordLatency(ctx context.Context, resource string, status int, d time.Duration) {
	if !c.latencyEnabled {
		return
	}
	c.latency.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("cms.resource", resource),
		attribute.Int("http.response.status_code", status),
	))
}

// AssetURL returns the public URL of an uploaded file.
func (c *Client) AssetURL(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if !c.Remote() {
		return "/assets/" + id
	}
	return c.baseURL + "/assets/" + id
}
