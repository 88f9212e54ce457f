// Package upstream holds the outbound HTTP clients for the metadata
// provider (TMDB) and the video embed provider.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the upstream could not be reached at all
// (DNS, connect, timeout before a response).
type TransportError struct {
	Upstream string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Upstream, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError means the upstream answered with an error status.
type StatusError struct {
	Upstream string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Upstream, e.Code, http.StatusText(e.Code))
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the upstream status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
