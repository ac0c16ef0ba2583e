// Package birthdate fetches a birth date from a third-party HTTP API used to
// enrich new leads.
package birthdate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phbpx/leads-api/metrics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 5 * time.Second

// maxBodySize caps how much of the response is decoded.
const maxBodySize = 1 << 20

// Client performs one GET per lookup against url. It never retries.
type Client struct {
	url     string
	http    *http.Client
	log     *otelzap.SugaredLogger
	metrics *metrics.Metrics
}

// NewClient returns a client for url. A non-positive timeout selects
// DefaultTimeout. m may be nil.
func NewClient(url string, timeout time.Duration, log *otelzap.SugaredLogger, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url: url,
		http: &http.Client{
			Timeout: timeout,
		},
		log:     log,
		metrics: m,
	}
}

type payload struct {
	BirthDate any `json:"birthDate"`
}

// BirthDate returns the birthDate field of the remote document, or nil when
// the lookup fails for any reason. Failures are logged, not returned.
func (c *Client) BirthDate(ctx context.Context) *string {
	ctx, span := otel.GetTracerProvider().Tracer("").Start(ctx, "birthdate.fetch")
	defer span.End()

	value, err := c.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		c.log.ErrorwContext(ctx, "failed to fetch birth date from external API", "url", c.url, "error", err)
		c.metrics.ObserveEnrichment(false)
		return nil
	}

	span.SetAttributes(attribute.Bool("birthdate.found", value != nil))
	c.metrics.ObserveEnrichment(value != nil)
	return value
}

func (c *Client) fetch(ctx context.Context) (*string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling external API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("external API responded with status %d", resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	s, ok := p.BirthDate.(string)
	if !ok {
		return nil, nil
	}
	return &s, nil
}
