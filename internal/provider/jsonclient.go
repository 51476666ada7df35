package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"index-pulse/internal/domain"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 15 * time.Second

// JSONGetter is the only transport capability sources depend on.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// JSONClient fetches JSON documents with a per-call timeout and a shared
// rate limiter. Cookies set by one response are replayed on later calls,
// which NSE requires.
type JSONClient struct {
	client  *http.Client
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewJSONClient allows 30 calls per minute across all sources by default.
func NewJSONClient(tracer trace.Tracer, timeout time.Duration) *JSONClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	jar, _ := cookiejar.New(nil)
	return &JSONClient{
		client:  &http.Client{Timeout: timeout, Jar: jar},
		tracer:  tracer,
		limiter: NewRateLimiter(30, 2*time.Second),
	}
}

func (c *JSONClient) GetJSON(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "json-client.get")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", url))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", domain.ErrProviderUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		span.SetStatus(codes.Error, resp.Status)
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrProviderUnavailable, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json from %s", domain.ErrMalformedResponse, url)
	}
	return body, nil
}
