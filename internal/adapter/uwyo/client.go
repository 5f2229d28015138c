package uwyo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/storm-sounding-service/internal/domain"
	"github.com/couchcryptid/storm-sounding-service/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// maxBodyBytes bounds a single archive page.
	maxBodyBytes = 4 << 20
)

// Client implements domain.SoundingFetcher against the University of Wyoming
// upper-air archive.
type Client struct {
	httpClient *http.Client
	baseURL    string
	region     string
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an archive client. Transient failures are retried up to
// maxRetries times.
func NewClient(baseURL, region string, timeout time.Duration, maxRetries int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    baseURL,
		region:     region,
		maxRetries: maxRetries,
		backoff:    initialBackoff,
		logger:     logger,
		metrics:    metrics,
	}
}

// statusError is a non-200 archive response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("uwyo archive error: status %d: %s", e.code, e.body)
}

// Fetch downloads the TEXT:LIST page for req and returns the level table
// enclosed in its first <PRE> block.
func (c *Client) Fetch(ctx context.Context, req domain.Request) (string, error) {
	start := time.Now()
	defer func() { c.metrics.FetchDuration.Observe(time.Since(start).Seconds()) }()

	fullURL := c.queryURL(req)
	backoff := c.backoff

	for attempt := 0; ; attempt++ {
		body, err := c.doRequest(ctx, fullURL)
		if err == nil {
			table, ok := extractTable(body)
			if !ok {
				c.metrics.FetchRequests.WithLabelValues("no_data").Inc()
				return "", fmt.Errorf("%s: %w", req, domain.ErrNoData)
			}
			c.metrics.FetchRequests.WithLabelValues("success").Inc()
			return table, nil
		}

		if !retryable(err) || attempt >= c.maxRetries || ctx.Err() != nil {
			c.metrics.FetchRequests.WithLabelValues("error").Inc()
			return "", fmt.Errorf("fetch %s: %w", req, err)
		}

		c.logger.Warn("archive request failed, retrying",
			"station", req.Station,
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err,
		)
		c.metrics.FetchRetries.Inc()
		if !retry.SleepWithContext(ctx, backoff) {
			c.metrics.FetchRequests.WithLabelValues("error").Inc()
			return "", fmt.Errorf("fetch %s: %w", req, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (c *Client) queryURL(req domain.Request) string {
	t := req.Time.UTC()
	slot := t.Format("0215")
	params := url.Values{
		"region": {c.region},
		"TYPE":   {"TEXT:LIST"},
		"YEAR":   {t.Format("2006")},
		"MONTH":  {t.Format("01")},
		"FROM":   {slot},
		"TO":     {slot},
		"STNM":   {req.Station},
	}
	return c.baseURL + "?" + params.Encode()
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sounding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(body), nil
}

// extractTable returns the text between the first <PRE> and the following
// </PRE>. The archive answers unknown station/time pairs with a page that
// has no such block.
func extractTable(page string) (string, bool) {
	start := strings.Index(page, "<PRE>")
	if start < 0 {
		return "", false
	}
	rest := page[start+len("<PRE>"):]
	end := strings.Index(rest, "</PRE>")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// retryable reports whether err is worth another attempt: transport errors
// and 5xx responses are, 4xx responses are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError
	}
	return true
}
