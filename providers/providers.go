// Package providers contains the upstream travel-data clients: Yelp
// Fusion, Google Places, Eventbrite and OpenWeather. Every provider
// takes a cache.Store and caches successful responses under a
// parameter-derived key; searches for one hour, geocoding and
// autocomplete for a day.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/driftlabs/scout/cache"
	"github.com/driftlabs/scout/metrics"
)

const (
	searchTTL  = time.Hour
	geocodeTTL = 24 * time.Hour
)

// ErrMissingAPIKey marks a provider that was constructed without
// credentials. The aggregator treats it as disabled rather than
// failed.
var ErrMissingAPIKey = errors.New("provider API key not configured")

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// getJSON performs an instrumented GET and decodes the JSON response
// into out.
func getJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, out any) error {
	metrics.ProviderRequests.WithLabelValues(provider).Inc()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(provider).Inc()
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(provider).Inc()
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	metrics.ProviderDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderErrors.WithLabelValues(provider).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", provider, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ProviderErrors.WithLabelValues(provider).Inc()
		return fmt.Errorf("failed to decode %s response: %w", provider, err)
	}
	return nil
}

// cached looks up key in the store and reports a typed hit.
func cached[T any](store cache.Store, provider, key string) (T, bool) {
	var zero T
	if store == nil {
		return zero, false
	}
	v, ok := store.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	metrics.CacheHits.WithLabelValues(provider).Inc()
	return typed, true
}

func store(s cache.Store, key string, v any, ttl time.Duration) {
	if s != nil {
		s.Set(key, v, ttl)
	}
}
