package upstream

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hszk-dev/megaflix/internal/infrastructure/metrics"
)

const embedName = "embed"

// Stream is an open upstream response whose body has not been read yet.
// Caller is responsible for closing Body.
type Stream struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
}

// EmbedClient opens video streams on the embed provider.
type EmbedClient struct {
	baseURL string
	http    *http.Client
}

// NewEmbedClient creates a client whose wait for response headers is bounded
// by headerTimeout. The body itself is not subject to a deadline, so long
// streams are only limited by the caller's context.
func NewEmbedClient(baseURL string, headerTimeout time.Duration) *EmbedClient {
	if headerTimeout <= 0 {
		headerTimeout = 20 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: headerTimeout,
	}

	return NewEmbedClientWithHTTP(baseURL, &http.Client{Transport: transport})
}

// NewEmbedClientWithHTTP creates a client around an existing http.Client.
// This is used for dependency injection in tests.
func NewEmbedClientWithHTTP(baseURL string, httpClient *http.Client) *EmbedClient {
	return &EmbedClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// MovieURL builds the embed URL for a single movie.
// Format: {baseURL}/embed/movie?tmdb={id}
func (c *EmbedClient) MovieURL(tmdbID string) string {
	return fmt.Sprintf("%s/embed/movie?tmdb=%s", c.baseURL, url.QueryEscape(tmdbID))
}

// SeriesURL builds the embed URL for one episode.
// Format: {baseURL}/embed/series?tmdb={id}&sea={season}&epi={episode}
func (c *EmbedClient) SeriesURL(tmdbID, season, episode string) string {
	return fmt.Sprintf("%s/embed/series?tmdb=%s&sea=%s&epi=%s",
		c.baseURL,
		url.QueryEscape(tmdbID),
		url.QueryEscape(season),
		url.QueryEscape(episode),
	)
}

// OpenStream issues a GET to target and returns as soon as headers arrive.
// rangeHeader, when non-empty, is forwarded as the Range request header.
// A status of 400 or above closes the body and returns *StatusError.
func (c *EmbedClient) OpenStream(ctx context.Context, target, rangeHeader string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamEmbed, metrics.UpstreamTransportError).Inc()
		return nil, &TransportError{Upstream: embedName, Err: err}
	}

	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamEmbed, metrics.UpstreamStatusError).Inc()
		return nil, &StatusError{Upstream: embedName, Code: resp.StatusCode}
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamEmbed, metrics.UpstreamOK).Inc()
	return &Stream{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   resp.Body,
	}, nil
}
