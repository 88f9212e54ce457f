// Package relay pipes a live upstream video stream into a client response
// without buffering the body.
package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hszk-dev/megaflix/internal/infrastructure/metrics"
	"github.com/hszk-dev/megaflix/internal/infrastructure/upstream"
)

const (
	// DefaultBufferSize is the chunk size of the streaming copy.
	DefaultBufferSize = 32 * 1024

	msgUpstreamUnavailable = "upstream video server unavailable"
	msgUpstreamNotFound    = "content not found at upstream source"
)

// ForwardedHeaders is the fixed set of upstream headers copied to the client.
// Nothing else from the upstream response is forwarded.
var ForwardedHeaders = []string{"Content-Type", "Content-Length", "Accept-Ranges"}

// partialHeaders are forwarded in addition when the upstream answers 206.
var partialHeaders = []string{"Content-Range"}

// StreamOpener opens an upstream stream. *upstream.EmbedClient satisfies it.
type StreamOpener interface {
	OpenStream(ctx context.Context, target, rangeHeader string) (*upstream.Stream, error)
}

// Relay copies upstream streams to clients. It holds no per-request state
// and is safe for concurrent use.
type Relay struct {
	opener     StreamOpener
	bufferSize int
	logger     *slog.Logger
}

// New creates a Relay. A nil logger falls back to slog.Default().
func New(opener StreamOpener, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		opener:     opener,
		bufferSize: DefaultBufferSize,
		logger:     logger,
	}
}

// Serve relays target to w.
//
// The upstream request is bound to r's context, so a client disconnect
// cancels it and releases the upstream connection. Once headers are sent
// the status cannot change; a mid-stream failure just ends the response.
func (rl *Relay) Serve(w http.ResponseWriter, r *http.Request, target string) {
	ctx := r.Context()

	stream, err := rl.opener.OpenStream(ctx, target, r.Header.Get("Range"))
	if err != nil {
		rl.writeOpenError(w, target, err)
		return
	}
	defer stream.Body.Close()

	h := w.Header()
	copyHeaders(h, stream.Header, ForwardedHeaders)
	if stream.Status == http.StatusPartialContent {
		copyHeaders(h, stream.Header, partialHeaders)
	}
	w.WriteHeader(stream.Status)

	n, err := rl.copyStream(w, stream.Body)
	metrics.RelayBytesTotal.Add(float64(n))

	if err != nil {
		metrics.RelaysTotal.WithLabelValues(metrics.RelayAborted).Inc()
		level := slog.LevelWarn
		if errors.Is(ctx.Err(), context.Canceled) {
			// Client went away; routine for video players seeking.
			level = slog.LevelDebug
		}
		rl.logger.Log(ctx, level, "stream relay aborted",
			slog.String("target", target),
			slog.Int64("bytes", n),
			slog.String("error", err.Error()),
		)
		return
	}

	metrics.RelaysTotal.WithLabelValues(metrics.RelayCompleted).Inc()
}

func (rl *Relay) writeOpenError(w http.ResponseWriter, target string, err error) {
	if code, ok := upstream.StatusCode(err); ok {
		metrics.RelaysTotal.WithLabelValues(metrics.RelayUpstreamStatus).Inc()
		rl.logger.Info("upstream stream returned error status",
			slog.String("target", target),
			slog.Int("status", code),
		)
		http.Error(w, msgUpstreamNotFound, code)
		return
	}

	metrics.RelaysTotal.WithLabelValues(metrics.RelayUpstreamUnreachable).Inc()
	rl.logger.Error("failed to open upstream stream",
		slog.String("target", target),
		slog.String("error", err.Error()),
	)
	http.Error(w, msgUpstreamUnavailable, http.StatusBadGateway)
}

// copyStream copies src to w chunk by chunk, flushing after every chunk so
// bytes reach the client as they arrive. Memory use is one buffer.
func (rl *Relay) copyStream(w http.ResponseWriter, src io.Reader) (int64, error) {
	rc := http.NewResponseController(w)
	buf := make([]byte, rl.bufferSize)

	var written int64
	for {
		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := w.Write(buf[:nr])
			written += int64(nw)
			if writeErr != nil {
				return written, writeErr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return written, err
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

func copyHeaders(dst, src http.Header, names []string) {
	for _, name := range names {
		if v := src.Get(name); v != "" {
			dst.Set(name, v)
		}
	}
}
