package upstream

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

	"github.com/hszk-dev/megaflix/internal/infrastructure/metrics"
)

const (
	tmdbName = "tmdb"

	// maxTMDBBodySize caps how much of a metadata response is read.
	maxTMDBBodySize = 8 << 20
)

// ErrInvalidJSON is returned when the metadata provider replies with a body that is not JSON.
var ErrInvalidJSON = errors.New("upstream returned invalid JSON")

// TMDBConfig holds configuration for the TMDB client.
type TMDBConfig struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// TMDBClient is a thin HTTP client for the TMDB v3 API.
type TMDBClient struct {
	baseURL  string
	apiKey   string
	language string
	http     *http.Client
}

// NewTMDBClient returns a new client. If httpClient is nil, one with cfg.Timeout is used.
func NewTMDBClient(cfg TMDBConfig, httpClient *http.Client) *TMDBClient {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &TMDBClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		http:     httpClient,
	}
}

// Get performs GET {baseURL}{path}?{params} and returns the raw JSON body.
// Failures are *TransportError or *StatusError.
func (c *TMDBClient) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	reqURL, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamTMDB, metrics.UpstreamTransportError).Inc()
		return nil, &TransportError{Upstream: tmdbName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxTMDBBodySize))
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamTMDB, metrics.UpstreamStatusError).Inc()
		return nil, &StatusError{Upstream: tmdbName, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTMDBBodySize))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamTMDB, metrics.UpstreamTransportError).Inc()
		return nil, &TransportError{Upstream: tmdbName, Err: err}
	}
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamTMDB, metrics.UpstreamOK).Inc()
	return json.RawMessage(body), nil
}

// buildURL composes the request URL with credentials and query params.
func (c *TMDBClient) buildURL(path string, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid tmdb url: %w", err)
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api_key", c.apiKey)
	if c.language != "" && q.Get("language") == "" {
		q.Set("language", c.language)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
